package gateway

import (
	"encoding/json"
	"time"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
)

// Inbound event names.
const (
	EventJoinRoom         = "join-room"
	EventLeaveRoom        = "leave-room"
	EventSendMessage      = "send-message"
	EventTypingStart      = "typing-start"
	EventTypingStop       = "typing-stop"
	EventMarkMessagesRead = "mark-messages-read"
	EventVoiceMessage     = "voice-message"
)

// Outbound event names.
const (
	EventNewMessage   = "new-message"
	EventUserJoined   = "user-joined"
	EventUserLeft     = "user-left"
	EventUserTyping   = "user-typing"
	EventMessagesRead = "messages-read"
	EventRoomJoined   = "room-joined"
	EventError        = "error"
)

// Envelope frames every message on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
}

type LeaveRoomPayload struct {
	RoomID string `json:"room_id"`
}

type SendMessagePayload struct {
	RoomID           string `json:"room_id"`
	Content          string `json:"content"`
	OriginalLanguage string `json:"original_language,omitempty"`
	ReplyTo          string `json:"reply_to,omitempty"`
}

type TypingPayload struct {
	RoomID string `json:"room_id"`
}

type MarkReadPayload struct {
	RoomID     string   `json:"room_id"`
	MessageIDs []string `json:"message_ids"`
}

type VoiceMessagePayload struct {
	RoomID           string `json:"room_id"`
	VoiceURL         string `json:"voice_url"`
	OriginalLanguage string `json:"original_language,omitempty"`
}

type RoomJoinedPayload struct {
	Room    *models.Room        `json:"room"`
	Members []models.PublicUser `json:"members"`
}

type UserEventPayload struct {
	User      models.PublicUser `json:"user"`
	Timestamp time.Time         `json:"timestamp"`
}

type TypingEventPayload struct {
	User     models.PublicUser `json:"user"`
	IsTyping bool              `json:"is_typing"`
}

type MessagesReadPayload struct {
	MessageID string            `json:"message_id"`
	ReadBy    models.PublicUser `json:"read_by"`
	ReadAt    time.Time         `json:"read_at"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// MessageView is the personalized rendering of a message delivered to
// one recipient: content carries their language's translation when one
// exists, else the original text.
type MessageView struct {
	ID               string               `json:"id"`
	Content          string               `json:"content"`
	Sender           models.PublicUser    `json:"sender"`
	RoomID           string               `json:"room_id"`
	OriginalLanguage string               `json:"original_language"`
	Translations     []models.Translation `json:"translations"`
	Type             string               `json:"type"`
	VoiceURL         string               `json:"voice_url,omitempty"`
	IsEdited         bool                 `json:"is_edited"`
	ReplyTo          string               `json:"reply_to,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

func encode(event string, data interface{}) []byte {
	raw, _ := json.Marshal(data)
	b, _ := json.Marshal(Envelope{Event: event, Data: raw})
	return b
}
