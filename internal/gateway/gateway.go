package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/events"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/presence"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/repository"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/translation"
)

// TranslationService is the slice of the translation layer the gateway
// uses for the send pipeline.
type TranslationService interface {
	TranslateForRecipients(ctx context.Context, content, originalLang string, recipients []*models.User) []translation.Translated
	DetectLanguage(ctx context.Context, text string) string
	FallbackLanguage() string
}

// Gateway orchestrates the realtime protocol over the room, message and
// user stores, the presence tracker and the translation service. Each
// connection's events are dispatched to it one at a time, so per-session
// sends reach persistence in submission order.
type Gateway struct {
	hub        *Hub
	rooms      repository.RoomStore
	messages   repository.MessageStore
	users      repository.UserStore
	presence   presence.Tracker
	translator TranslationService
	publisher  events.Publisher
	log        *zap.SugaredLogger
}

func New(
	hub *Hub,
	rooms repository.RoomStore,
	messages repository.MessageStore,
	users repository.UserStore,
	tracker presence.Tracker,
	translator TranslationService,
	publisher events.Publisher,
	log *zap.SugaredLogger,
) *Gateway {
	return &Gateway{
		hub:        hub,
		rooms:      rooms,
		messages:   messages,
		users:      users,
		presence:   tracker,
		translator: translator,
		publisher:  publisher,
		log:        log,
	}
}

func (g *Gateway) Hub() *Hub { return g.hub }

// Connect registers the session, joins the user's private channel and
// marks the user online.
func (g *Gateway) Connect(ctx context.Context, s *Session) {
	g.hub.Register(s)
	if err := g.presence.SetOnline(ctx, s.UserID); err != nil {
		g.log.Warnw("presence online update failed", "user", s.UserID, "error", err)
	}
	if err := g.users.SetOnline(ctx, s.UserID, true, time.Now().UTC()); err != nil {
		g.log.Warnw("user online flag update failed", "user", s.UserID, "error", err)
	}
}

// Disconnect marks the user offline, announces the departure to the
// session's current room and destroys the session.
func (g *Gateway) Disconnect(ctx context.Context, s *Session) {
	if err := g.presence.SetOffline(ctx, s.UserID); err != nil {
		g.log.Warnw("presence offline update failed", "user", s.UserID, "error", err)
	}
	if err := g.users.SetOnline(ctx, s.UserID, false, time.Now().UTC()); err != nil {
		g.log.Warnw("user offline flag update failed", "user", s.UserID, "error", err)
	}
	if roomID := s.CurrentRoom(); roomID != "" {
		g.hub.BroadcastToRoom(roomID, encode(EventUserLeft, UserEventPayload{
			User:      s.User.Public(),
			Timestamp: time.Now().UTC(),
		}), s)
	}
	g.hub.Unregister(s)
	s.closeSend()
}

// JoinRoom validates membership, subscribes the session to the room and
// replies with a room snapshot. Errors go to the requesting session
// only; state is unchanged on failure.
func (g *Gateway) JoinRoom(ctx context.Context, s *Session, p JoinRoomPayload) {
	room, err := g.rooms.GetRoom(ctx, p.RoomID)
	if err != nil || !room.IsMember(s.UserID) {
		g.sendError(s, "Not authorized to join this room")
		return
	}

	g.hub.Subscribe(p.RoomID, s)
	s.setCurrentRoom(p.RoomID)

	g.hub.BroadcastToRoom(p.RoomID, encode(EventUserJoined, UserEventPayload{
		User:      s.User.Public(),
		Timestamp: time.Now().UTC(),
	}), s)

	members, err := g.users.GetUsers(ctx, room.MemberIDs())
	if err != nil {
		g.log.Warnw("member load failed", "room", p.RoomID, "error", err)
	}
	public := make([]models.PublicUser, 0, len(members))
	for _, m := range members {
		public = append(public, m.Public())
	}
	s.deliver(encode(EventRoomJoined, RoomJoinedPayload{Room: room, Members: public}))
	g.log.Infow("user joined room", "user", s.User.Username, "room", room.Name)
}

// LeaveRoom drops the transport subscription unconditionally. It does
// not touch persisted membership; giving up membership is the explicit
// HTTP leave action.
func (g *Gateway) LeaveRoom(_ context.Context, s *Session, p LeaveRoomPayload) {
	g.hub.Unsubscribe(p.RoomID, s)
	g.hub.BroadcastToRoom(p.RoomID, encode(EventUserLeft, UserEventPayload{
		User:      s.User.Public(),
		Timestamp: time.Now().UTC(),
	}), s)
	s.clearCurrentRoom(p.RoomID)
}

// SendMessage runs the persist → translate → personalize → fan-out
// pipeline. Precondition failures abort before persistence; translation
// failures degrade to original-text delivery for the affected languages.
func (g *Gateway) SendMessage(ctx context.Context, s *Session, p SendMessagePayload) {
	room, err := g.rooms.GetRoom(ctx, p.RoomID)
	if err != nil || !room.IsMember(s.UserID) {
		g.sendError(s, "Not authorized to send messages in this room")
		return
	}

	content, err := models.ValidateContent(p.Content)
	if err != nil {
		g.sendError(s, "Message content must be 1-1000 characters")
		return
	}

	lang := p.OriginalLanguage
	if lang == "" {
		lang = g.translator.DetectLanguage(ctx, content)
	}

	msg := &models.Message{
		ID:               newID(),
		Content:          content,
		SenderID:         s.UserID,
		RoomID:           p.RoomID,
		OriginalLanguage: lang,
		Type:             models.MessageTypeText,
		ReplyTo:          p.ReplyTo,
	}
	if err := g.messages.Create(ctx, msg); err != nil {
		g.log.Errorw("message persist failed", "room", p.RoomID, "error", err)
		g.sendError(s, "Failed to send message")
		return
	}

	// Membership is re-read after persistence so the fan-out sees any
	// membership change that happened since join validation.
	room, err = g.rooms.GetRoom(ctx, p.RoomID)
	if err != nil {
		g.log.Errorw("room reload failed", "room", p.RoomID, "error", err)
		g.sendError(s, "Failed to send message")
		return
	}
	members, err := g.users.GetUsers(ctx, room.MemberIDs())
	if err != nil {
		g.log.Errorw("member load failed", "room", p.RoomID, "error", err)
		g.sendError(s, "Failed to send message")
		return
	}

	for _, t := range g.translator.TranslateForRecipients(ctx, content, lang, members) {
		msg.AddTranslation(t.Language, t.Text)
		if err := g.messages.AddTranslation(ctx, msg.ID, t.Language, t.Text); err != nil {
			g.log.Warnw("translation persist failed", "message", msg.ID, "language", t.Language, "error", err)
		}
	}

	if err := g.rooms.TouchActivity(ctx, p.RoomID); err != nil {
		g.log.Warnw("room activity bump failed", "room", p.RoomID, "error", err)
	}

	for _, member := range members {
		view := g.messageView(msg, s.User.Public())
		view.Content = msg.ResolveForLanguage(member.PreferredLanguage)
		g.hub.SendToUser(member.ID, encode(EventNewMessage, view))
	}

	g.publishSent(ctx, msg)
	g.log.Infow("message sent", "user", s.User.Username, "room", room.Name)
}

// Typing relays an ephemeral signal to the room, only while the sender's
// session is actually viewing that room. Best effort, nothing persisted.
func (g *Gateway) Typing(_ context.Context, s *Session, p TypingPayload, isTyping bool) {
	if s.CurrentRoom() != p.RoomID {
		return
	}
	g.hub.BroadcastToRoom(p.RoomID, encode(EventUserTyping, TypingEventPayload{
		User:     s.User.Public(),
		IsTyping: isTyping,
	}), s)
}

// MarkMessagesRead records a receipt per message the caller has not read
// yet and notifies each message's sender over their private channel.
// Repeated calls with overlapping id sets are idempotent.
func (g *Gateway) MarkMessagesRead(ctx context.Context, s *Session, p MarkReadPayload) {
	msgs, err := g.messages.GetMessages(ctx, p.MessageIDs)
	if err != nil {
		g.log.Warnw("read-receipt message load failed", "room", p.RoomID, "error", err)
		return
	}
	for _, m := range msgs {
		if m.RoomID != p.RoomID {
			continue
		}
		recorded, err := g.messages.MarkRead(ctx, m.ID, s.UserID)
		if err != nil {
			g.log.Warnw("read-receipt persist failed", "message", m.ID, "error", err)
			continue
		}
		if !recorded || m.SenderID == s.UserID {
			continue
		}
		g.hub.SendToUser(m.SenderID, encode(EventMessagesRead, MessagesReadPayload{
			MessageID: m.ID,
			ReadBy:    s.User.Public(),
			ReadAt:    time.Now().UTC(),
		}))
	}
}

// VoiceMessage persists a voice-kind message referencing externally
// stored audio and broadcasts it to the room's live subscribers. Voice
// content is not text-translated.
func (g *Gateway) VoiceMessage(ctx context.Context, s *Session, p VoiceMessagePayload) {
	room, err := g.rooms.GetRoom(ctx, p.RoomID)
	if err != nil || !room.IsMember(s.UserID) {
		g.sendError(s, "Not authorized to send messages in this room")
		return
	}

	lang := p.OriginalLanguage
	if lang == "" {
		lang = g.translator.FallbackLanguage()
	}
	msg := &models.Message{
		ID:               newID(),
		Content:          "[Voice Message]",
		SenderID:         s.UserID,
		RoomID:           p.RoomID,
		OriginalLanguage: lang,
		Type:             models.MessageTypeVoice,
		VoiceURL:         p.VoiceURL,
	}
	if err := g.messages.Create(ctx, msg); err != nil {
		g.log.Errorw("voice message persist failed", "room", p.RoomID, "error", err)
		g.sendError(s, "Failed to send voice message")
		return
	}

	view := g.messageView(msg, s.User.Public())
	g.hub.BroadcastToRoom(p.RoomID, encode(EventNewMessage, view), nil)
	g.publishSent(ctx, msg)
}

func (g *Gateway) messageView(m *models.Message, sender models.PublicUser) MessageView {
	return MessageView{
		ID:               m.ID,
		Content:          m.Content,
		Sender:           sender,
		RoomID:           m.RoomID,
		OriginalLanguage: m.OriginalLanguage,
		Translations:     m.Translations,
		Type:             m.Type,
		VoiceURL:         m.VoiceURL,
		IsEdited:         m.IsEdited,
		ReplyTo:          m.ReplyTo,
		CreatedAt:        m.CreatedAt,
	}
}

func (g *Gateway) publishSent(ctx context.Context, m *models.Message) {
	if g.publisher == nil {
		return
	}
	err := g.publisher.PublishMessageSent(ctx, events.MessageSent{
		MessageID:        m.ID,
		RoomID:           m.RoomID,
		SenderID:         m.SenderID,
		OriginalLanguage: m.OriginalLanguage,
		Type:             m.Type,
		CreatedAt:        m.CreatedAt,
	})
	if err != nil {
		g.log.Warnw("message-sent publish failed", "message", m.ID, "error", err)
	}
}

func (g *Gateway) sendError(s *Session, msg string) {
	s.deliver(encode(EventError, ErrorPayload{Message: msg}))
}
