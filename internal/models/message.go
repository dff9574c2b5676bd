package models

import (
	"strings"
	"time"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/chaterr"
)

const (
	MessageTypeText   = "text"
	MessageTypeVoice  = "voice"
	MessageTypeSystem = "system"

	MaxMessageContentLen = 1000
)

type Translation struct {
	Language     string    `bson:"language" json:"language"`
	Text         string    `bson:"text" json:"text"`
	TranslatedAt time.Time `bson:"translated_at" json:"translated_at"`
}

type ReadReceipt struct {
	UserID string    `bson:"user_id" json:"user_id"`
	ReadAt time.Time `bson:"read_at" json:"read_at"`
}

type Message struct {
	ID               string        `bson:"_id" json:"id"`
	Content          string        `bson:"content" json:"content"`
	SenderID         string        `bson:"sender_id" json:"sender_id"`
	RoomID           string        `bson:"room_id" json:"room_id"`
	OriginalLanguage string        `bson:"original_language" json:"original_language"`
	Translations     []Translation `bson:"translations" json:"translations"`
	Type             string        `bson:"type" json:"type"`
	VoiceURL         string        `bson:"voice_url,omitempty" json:"voice_url,omitempty"`
	IsEdited         bool          `bson:"is_edited" json:"is_edited"`
	EditedAt         *time.Time    `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	ReadBy           []ReadReceipt `bson:"read_by" json:"read_by"`
	ReplyTo          string        `bson:"reply_to,omitempty" json:"reply_to,omitempty"`
	CreatedAt        time.Time     `bson:"created_at" json:"created_at"`
}

// ValidateContent trims the content and enforces the 1..1000 char limit.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || len([]rune(trimmed)) > MaxMessageContentLen {
		return "", chaterr.ErrInvalidContent
	}
	return trimmed, nil
}

// AddTranslation upserts the entry for the given language: a later
// translation for the same language replaces the earlier one.
func (m *Message) AddTranslation(language, text string) {
	for i := range m.Translations {
		if m.Translations[i].Language == language {
			m.Translations[i] = Translation{Language: language, Text: text, TranslatedAt: time.Now().UTC()}
			return
		}
	}
	m.Translations = append(m.Translations, Translation{
		Language:     language,
		Text:         text,
		TranslatedAt: time.Now().UTC(),
	})
}

// ResolveForLanguage returns the translation text for the language, or
// the original content when no entry exists. It never fails.
func (m *Message) ResolveForLanguage(language string) string {
	for _, t := range m.Translations {
		if t.Language == language {
			return t.Text
		}
	}
	return m.Content
}

// MarkRead appends a receipt for the user unless one already exists.
// Returns true when a new receipt was recorded.
func (m *Message) MarkRead(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return false
		}
	}
	m.ReadBy = append(m.ReadBy, ReadReceipt{UserID: userID, ReadAt: time.Now().UTC()})
	return true
}
