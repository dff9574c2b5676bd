package models

import "time"

// User mirrors the identity provider's record plus chat-level settings.
// The realtime layer only reads profile fields and updates presence.
type User struct {
	ID                string    `bson:"_id" json:"id"`
	Username          string    `bson:"username" json:"username"`
	Email             string    `bson:"email" json:"email"`
	Avatar            string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	PreferredLanguage string    `bson:"preferred_language" json:"preferred_language"`
	SpeechEnabled     bool      `bson:"speech_enabled" json:"speech_enabled"`
	IsOnline          bool      `bson:"is_online" json:"is_online"`
	LastSeen          time.Time `bson:"last_seen" json:"last_seen"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}

// PublicUser is the view of a user shared with other room members.
type PublicUser struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Avatar            string    `json:"avatar,omitempty"`
	PreferredLanguage string    `json:"preferred_language"`
	IsOnline          bool      `json:"is_online"`
	LastSeen          time.Time `json:"last_seen"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Username:          u.Username,
		Avatar:            u.Avatar,
		PreferredLanguage: u.PreferredLanguage,
		IsOnline:          u.IsOnline,
		LastSeen:          u.LastSeen,
	}
}
