package chaterr

import "errors"

var (
	ErrAuthentication         = errors.New("authentication failed")
	ErrUnauthorized           = errors.New("not authorized")
	ErrInvalidContent         = errors.New("invalid message content")
	ErrTranslationUnavailable = errors.New("translation unavailable")
	ErrNotFound               = errors.New("not found")
	ErrRoomFull               = errors.New("room is full")
	ErrLastMember             = errors.New("admin cannot leave room as the only member")
)
