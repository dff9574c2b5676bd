package repository

import (
	"context"
	"time"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
)

// RoomStore is shared by the realtime gateway and the HTTP layer; both
// operate on the same underlying room state.
type RoomStore interface {
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	// JoinMember appends a membership in one guarded write: it succeeds
	// only while the user is not yet a member and the room has capacity,
	// so racing joins cannot overshoot max_members. Reports whether the
	// member was added.
	JoinMember(ctx context.Context, roomID string, m models.Membership) (bool, error)
	SaveMembers(ctx context.Context, room *models.Room) error
	TouchActivity(ctx context.Context, roomID string) error
}

type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, messageID string) (*models.Message, error)
	GetMessages(ctx context.Context, messageIDs []string) ([]*models.Message, error)
	ListByRoom(ctx context.Context, roomID string, page, limit int64) ([]*models.Message, error)
	CountByRoom(ctx context.Context, roomID string) (int64, error)
	AddTranslation(ctx context.Context, messageID, language, text string) error
	// MarkRead records a receipt for the user unless one exists already.
	// Reports whether a new receipt was written.
	MarkRead(ctx context.Context, messageID, userID string) (bool, error)
	Delete(ctx context.Context, messageID string) error
}

type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUsers(ctx context.Context, userIDs []string) ([]*models.User, error)
	Search(ctx context.Context, query, excludeID string, limit int64) ([]*models.User, error)
	ListOnline(ctx context.Context, excludeID string) ([]*models.User, error)
	UpsertProfile(ctx context.Context, user *models.User) error
	UpdateSettings(ctx context.Context, userID string, preferredLanguage *string, speechEnabled *bool) error
	SetOnline(ctx context.Context, userID string, online bool, lastSeen time.Time) error
}
