package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/chaterr"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/events"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/presence"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/translation"
)

type fakeRoomStore struct {
	mu      sync.Mutex
	rooms   map[string]*models.Room
	touched []string
}

func (f *fakeRoomStore) GetRoom(_ context.Context, roomID string) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return nil, chaterr.ErrNotFound
	}
	return r, nil
}

func (f *fakeRoomStore) ListRoomsForUser(context.Context, string) ([]*models.Room, error) {
	return nil, nil
}

func (f *fakeRoomStore) CreateRoom(_ context.Context, room *models.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomStore) JoinMember(_ context.Context, roomID string, m models.Membership) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[roomID]
	if !ok {
		return false, chaterr.ErrNotFound
	}
	if r.IsMember(m.UserID) || r.IsFull() {
		return false, nil
	}
	r.Members = append(r.Members, m)
	return true, nil
}

func (f *fakeRoomStore) SaveMembers(context.Context, *models.Room) error { return nil }

func (f *fakeRoomStore) TouchActivity(_ context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, roomID)
	return nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	messages map[string]*models.Message
	created  int
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: make(map[string]*models.Message)}
}

func (f *fakeMessageStore) Create(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.CreatedAt = time.Now().UTC()
	cp := *msg
	f.messages[msg.ID] = &cp
	f.created++
	return nil
}

func (f *fakeMessageStore) GetMessage(_ context.Context, id string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil, chaterr.ErrNotFound
	}
	return m, nil
}

func (f *fakeMessageStore) GetMessages(_ context.Context, ids []string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Message{}
	for _, id := range ids {
		if m, ok := f.messages[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) ListByRoom(context.Context, string, int64, int64) ([]*models.Message, error) {
	return nil, nil
}

func (f *fakeMessageStore) CountByRoom(context.Context, string) (int64, error) { return 0, nil }

func (f *fakeMessageStore) AddTranslation(_ context.Context, messageID, language, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[messageID]
	if !ok {
		return chaterr.ErrNotFound
	}
	m.AddTranslation(language, text)
	return nil
}

func (f *fakeMessageStore) MarkRead(_ context.Context, messageID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[messageID]
	if !ok {
		return false, chaterr.ErrNotFound
	}
	return m.MarkRead(userID), nil
}

func (f *fakeMessageStore) Delete(context.Context, string) error { return nil }

func (f *fakeMessageStore) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (f *fakeUserStore) GetUser(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, chaterr.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetUsers(_ context.Context, ids []string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) Search(context.Context, string, string, int64) ([]*models.User, error) {
	return nil, nil
}

func (f *fakeUserStore) ListOnline(context.Context, string) ([]*models.User, error) {
	return nil, nil
}

func (f *fakeUserStore) UpsertProfile(context.Context, *models.User) error { return nil }

func (f *fakeUserStore) UpdateSettings(context.Context, string, *string, *bool) error { return nil }

func (f *fakeUserStore) SetOnline(context.Context, string, bool, time.Time) error { return nil }

type fakeTracker struct {
	mu     sync.Mutex
	online map[string]bool
}

func (f *fakeTracker) SetOnline(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[userID] = true
	return nil
}

func (f *fakeTracker) SetOffline(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[userID] = false
	return nil
}

func (f *fakeTracker) Get(_ context.Context, userID string) (presence.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return presence.Status{Online: f.online[userID]}, nil
}

type fakeUpstream struct {
	mu      sync.Mutex
	calls   int
	failFor map[string]bool
}

func (f *fakeUpstream) Translate(_ context.Context, text, _, to string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failFor[to] {
		return "", errors.New("upstream down")
	}
	return "[" + to + "]" + text, nil
}

func (f *fakeUpstream) Detect(context.Context, string) (string, error) { return "en", nil }

func (f *fakeUpstream) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePublisher struct {
	mu        sync.Mutex
	published []events.MessageSent
}

func (f *fakePublisher) PublishMessageSent(_ context.Context, ev events.MessageSent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, ev)
	return nil
}

type fixture struct {
	gw       *Gateway
	hub      *Hub
	rooms    *fakeRoomStore
	messages *fakeMessageStore
	users    *fakeUserStore
	tracker  *fakeTracker
	upstream *fakeUpstream
	pub      *fakePublisher
}

func bootstrap(t *testing.T) *fixture {
	t.Helper()
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	sugar := logger.Sugar()

	upstream := &fakeUpstream{failFor: map[string]bool{}}
	translator := translation.NewService(
		upstream,
		translation.NewMemoryCache(5*time.Minute),
		time.Second,
		"en",
		sugar,
	)

	f := &fixture{
		hub:      NewHub(),
		rooms:    &fakeRoomStore{rooms: map[string]*models.Room{}},
		messages: newFakeMessageStore(),
		users:    &fakeUserStore{users: map[string]*models.User{}},
		tracker:  &fakeTracker{online: map[string]bool{}},
		upstream: upstream,
		pub:      &fakePublisher{},
	}
	f.gw = New(f.hub, f.rooms, f.messages, f.users, f.tracker, translator, f.pub, sugar)
	return f
}

func (f *fixture) addUser(id, lang string) *models.User {
	u := &models.User{ID: id, Username: id, PreferredLanguage: lang}
	f.users.users[id] = u
	return u
}

func (f *fixture) addRoom(id, adminID string, memberIDs ...string) *models.Room {
	r := &models.Room{ID: id, Name: id, AdminID: adminID, MaxMembers: 100, IsActive: true}
	r.AddMember(adminID, models.RoleAdmin)
	for _, m := range memberIDs {
		r.AddMember(m, models.RoleMember)
	}
	f.rooms.rooms[id] = r
	return r
}

func (f *fixture) connect(t *testing.T, user *models.User) *Session {
	t.Helper()
	s := NewSession(newID(), user, 32)
	f.gw.Connect(context.Background(), s)
	return s
}

func recvEvent(t *testing.T, s *Session) Envelope {
	t.Helper()
	select {
	case b := <-s.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(b, &env))
		return env
	default:
		t.Fatal("expected a delivered payload")
		return Envelope{}
	}
}

func assertNoEvent(t *testing.T, s *Session) {
	t.Helper()
	select {
	case b := <-s.send:
		t.Fatalf("unexpected payload delivered: %s", b)
	default:
	}
}

func TestSendMessageEndToEnd(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	bob := f.addUser("bob", "es")
	f.addRoom("r1", "alice", "bob")

	aliceSess := f.connect(t, alice)
	// bob is connected but not viewing r1: delivery still reaches him
	// over his private channel
	bobSess := f.connect(t, bob)

	f.gw.SendMessage(context.Background(), aliceSess, SendMessagePayload{
		RoomID:           "r1",
		Content:          "Good morning",
		OriginalLanguage: "en",
	})

	require.Equal(t, 1, f.messages.createdCount())
	var stored *models.Message
	for _, m := range f.messages.messages {
		stored = m
	}
	require.NotNil(t, stored)
	assert.Equal(t, "Good morning", stored.Content)
	require.Len(t, stored.Translations, 1)
	assert.Equal(t, "es", stored.Translations[0].Language)

	env := recvEvent(t, aliceSess)
	assert.Equal(t, EventNewMessage, env.Event)
	var aliceView MessageView
	require.NoError(t, json.Unmarshal(env.Data, &aliceView))
	assert.Equal(t, "Good morning", aliceView.Content)

	env = recvEvent(t, bobSess)
	assert.Equal(t, EventNewMessage, env.Event)
	var bobView MessageView
	require.NoError(t, json.Unmarshal(env.Data, &bobView))
	assert.Equal(t, "[es]Good morning", bobView.Content)

	assert.Equal(t, []string{"r1"}, f.rooms.touched)
	require.Len(t, f.pub.published, 1)
	assert.Equal(t, stored.ID, f.pub.published[0].MessageID)
}

func TestSendMessageDistinctLanguageBatching(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	f.addUser("ben", "en")
	f.addUser("carla", "es")
	f.addUser("dan", "fr")
	f.addRoom("r1", "alice", "ben", "carla", "dan")

	s := f.connect(t, alice)
	f.gw.SendMessage(context.Background(), s, SendMessagePayload{
		RoomID:           "r1",
		Content:          "hi all",
		OriginalLanguage: "en",
	})

	// four members, two distinct non-original languages, two calls
	assert.Equal(t, 2, f.upstream.callCount())
}

func TestSendMessagePartialTranslationFailure(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	bob := f.addUser("bob", "es")
	carol := f.addUser("carol", "fr")
	f.addRoom("r1", "alice", "bob", "carol")
	f.upstream.failFor["fr"] = true

	aliceSess := f.connect(t, alice)
	bobSess := f.connect(t, bob)
	carolSess := f.connect(t, carol)

	f.gw.SendMessage(context.Background(), aliceSess, SendMessagePayload{
		RoomID:           "r1",
		Content:          "Good morning",
		OriginalLanguage: "en",
	})

	// message persisted with only the successful translation
	require.Equal(t, 1, f.messages.createdCount())
	var stored *models.Message
	for _, m := range f.messages.messages {
		stored = m
	}
	require.Len(t, stored.Translations, 1)
	assert.Equal(t, "es", stored.Translations[0].Language)

	var view MessageView
	env := recvEvent(t, bobSess)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "[es]Good morning", view.Content)

	// carol degrades to the original text, not an error
	env = recvEvent(t, carolSess)
	assert.Equal(t, EventNewMessage, env.Event)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "Good morning", view.Content)
}

func TestSendMessageUnauthorizedAbortsBeforePersistence(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	carol := f.addUser("carol", "fr")
	f.addRoom("r1", "alice")

	aliceSess := f.connect(t, alice)
	carolSess := f.connect(t, carol)

	f.gw.SendMessage(context.Background(), carolSess, SendMessagePayload{
		RoomID:           "r1",
		Content:          "let me in",
		OriginalLanguage: "en",
	})

	assert.Zero(t, f.messages.createdCount())
	env := recvEvent(t, carolSess)
	assert.Equal(t, EventError, env.Event)
	assertNoEvent(t, aliceSess)
}

func TestSendMessageInvalidContent(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	f.addRoom("r1", "alice")
	s := f.connect(t, alice)

	f.gw.SendMessage(context.Background(), s, SendMessagePayload{
		RoomID:           "r1",
		Content:          "   ",
		OriginalLanguage: "en",
	})

	assert.Zero(t, f.messages.createdCount())
	env := recvEvent(t, s)
	assert.Equal(t, EventError, env.Event)
}

func TestJoinRoom(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	bob := f.addUser("bob", "es")
	f.addRoom("r1", "alice", "bob")

	aliceSess := f.connect(t, alice)
	bobSess := f.connect(t, bob)

	f.gw.JoinRoom(context.Background(), aliceSess, JoinRoomPayload{RoomID: "r1"})
	env := recvEvent(t, aliceSess)
	assert.Equal(t, EventRoomJoined, env.Event)
	var snapshot RoomJoinedPayload
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, "r1", snapshot.Room.ID)
	assert.Len(t, snapshot.Members, 2)
	assert.Equal(t, "r1", aliceSess.CurrentRoom())

	f.gw.JoinRoom(context.Background(), bobSess, JoinRoomPayload{RoomID: "r1"})
	// alice, already in the room, sees bob join
	env = recvEvent(t, aliceSess)
	assert.Equal(t, EventUserJoined, env.Event)
}

func TestJoinRoomUnauthorized(t *testing.T) {
	f := bootstrap(t)
	f.addUser("alice", "en")
	carol := f.addUser("carol", "fr")
	f.addRoom("r1", "alice")

	carolSess := f.connect(t, carol)
	f.gw.JoinRoom(context.Background(), carolSess, JoinRoomPayload{RoomID: "r1"})

	env := recvEvent(t, carolSess)
	assert.Equal(t, EventError, env.Event)
	assert.Empty(t, carolSess.CurrentRoom())
}

func TestLeaveRoomKeepsMembership(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	bob := f.addUser("bob", "es")
	f.addRoom("r1", "alice", "bob")

	aliceSess := f.connect(t, alice)
	bobSess := f.connect(t, bob)
	f.gw.JoinRoom(context.Background(), aliceSess, JoinRoomPayload{RoomID: "r1"})
	f.gw.JoinRoom(context.Background(), bobSess, JoinRoomPayload{RoomID: "r1"})
	recvEvent(t, aliceSess) // room snapshot
	recvEvent(t, aliceSess) // bob joined
	recvEvent(t, bobSess)   // room snapshot

	f.gw.LeaveRoom(context.Background(), bobSess, LeaveRoomPayload{RoomID: "r1"})

	assert.Empty(t, bobSess.CurrentRoom())
	env := recvEvent(t, aliceSess)
	assert.Equal(t, EventUserLeft, env.Event)
	// transport leave does not remove persisted membership
	assert.True(t, f.rooms.rooms["r1"].IsMember("bob"))
}

func TestTypingOnlyWhileViewingRoom(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	bob := f.addUser("bob", "es")
	f.addRoom("r1", "alice", "bob")

	aliceSess := f.connect(t, alice)
	bobSess := f.connect(t, bob)
	f.gw.JoinRoom(context.Background(), aliceSess, JoinRoomPayload{RoomID: "r1"})
	recvEvent(t, aliceSess)

	// bob never joined the live view: his typing signal is dropped
	f.gw.Typing(context.Background(), bobSess, TypingPayload{RoomID: "r1"}, true)
	assertNoEvent(t, aliceSess)

	f.gw.JoinRoom(context.Background(), bobSess, JoinRoomPayload{RoomID: "r1"})
	recvEvent(t, bobSess)
	recvEvent(t, aliceSess) // user-joined

	f.gw.Typing(context.Background(), bobSess, TypingPayload{RoomID: "r1"}, true)
	env := recvEvent(t, aliceSess)
	assert.Equal(t, EventUserTyping, env.Event)
	var typing TypingEventPayload
	require.NoError(t, json.Unmarshal(env.Data, &typing))
	assert.True(t, typing.IsTyping)
	assert.Equal(t, "bob", typing.User.ID)
}

func TestMarkMessagesReadIdempotentAndNotifiesSender(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	bob := f.addUser("bob", "es")
	f.addRoom("r1", "alice", "bob")

	aliceSess := f.connect(t, alice)
	bobSess := f.connect(t, bob)

	f.gw.SendMessage(context.Background(), aliceSess, SendMessagePayload{
		RoomID:           "r1",
		Content:          "hello",
		OriginalLanguage: "en",
	})
	recvEvent(t, aliceSess)
	recvEvent(t, bobSess)
	var msgID string
	for id := range f.messages.messages {
		msgID = id
	}

	payload := MarkReadPayload{RoomID: "r1", MessageIDs: []string{msgID}}
	f.gw.MarkMessagesRead(context.Background(), bobSess, payload)

	env := recvEvent(t, aliceSess)
	assert.Equal(t, EventMessagesRead, env.Event)
	var read MessagesReadPayload
	require.NoError(t, json.Unmarshal(env.Data, &read))
	assert.Equal(t, msgID, read.MessageID)
	assert.Equal(t, "bob", read.ReadBy.ID)

	// repeat with the same id set: no second receipt, no second notify
	f.gw.MarkMessagesRead(context.Background(), bobSess, payload)
	assertNoEvent(t, aliceSess)
	assert.Len(t, f.messages.messages[msgID].ReadBy, 1)
}

func TestVoiceMessageSkipsTranslation(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	bob := f.addUser("bob", "es")
	f.addRoom("r1", "alice", "bob")

	aliceSess := f.connect(t, alice)
	bobSess := f.connect(t, bob)
	f.gw.JoinRoom(context.Background(), aliceSess, JoinRoomPayload{RoomID: "r1"})
	f.gw.JoinRoom(context.Background(), bobSess, JoinRoomPayload{RoomID: "r1"})
	recvEvent(t, aliceSess)
	recvEvent(t, aliceSess)
	recvEvent(t, bobSess)

	f.gw.VoiceMessage(context.Background(), aliceSess, VoiceMessagePayload{
		RoomID:           "r1",
		VoiceURL:         "/voice/123.webm",
		OriginalLanguage: "en",
	})

	assert.Zero(t, f.upstream.callCount())
	require.Equal(t, 1, f.messages.createdCount())

	env := recvEvent(t, bobSess)
	assert.Equal(t, EventNewMessage, env.Event)
	var view MessageView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, models.MessageTypeVoice, view.Type)
	assert.Equal(t, "/voice/123.webm", view.VoiceURL)
	assert.Empty(t, view.Translations)
}

func TestVoiceMessageEmptyLanguageUsesConfiguredFallback(t *testing.T) {
	f := bootstrap(t)
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	sugar := logger.Sugar()

	// rebuild the gateway around a translator whose fallback is not "en"
	translator := translation.NewService(
		f.upstream,
		translation.NewMemoryCache(5*time.Minute),
		time.Second,
		"hi",
		sugar,
	)
	f.gw = New(f.hub, f.rooms, f.messages, f.users, f.tracker, translator, f.pub, sugar)

	alice := f.addUser("alice", "en")
	f.addRoom("r1", "alice")
	s := f.connect(t, alice)

	f.gw.VoiceMessage(context.Background(), s, VoiceMessagePayload{
		RoomID:   "r1",
		VoiceURL: "/voice/456.webm",
	})

	require.Equal(t, 1, f.messages.createdCount())
	var stored *models.Message
	for _, m := range f.messages.messages {
		stored = m
	}
	require.NotNil(t, stored)
	assert.Equal(t, "hi", stored.OriginalLanguage)
}

func TestDisconnectMarksOfflineAndAnnouncesLeave(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	bob := f.addUser("bob", "es")
	f.addRoom("r1", "alice", "bob")

	aliceSess := f.connect(t, alice)
	bobSess := f.connect(t, bob)
	assert.True(t, f.tracker.online["bob"])

	f.gw.JoinRoom(context.Background(), aliceSess, JoinRoomPayload{RoomID: "r1"})
	f.gw.JoinRoom(context.Background(), bobSess, JoinRoomPayload{RoomID: "r1"})
	recvEvent(t, aliceSess)
	recvEvent(t, aliceSess)
	recvEvent(t, bobSess)

	f.gw.Disconnect(context.Background(), bobSess)

	assert.False(t, f.tracker.online["bob"])
	env := recvEvent(t, aliceSess)
	assert.Equal(t, EventUserLeft, env.Event)

	// bob's private channel is gone: deliveries to him are dropped
	f.hub.SendToUser("bob", []byte("x"))
}

func TestMultipleSessionsPerUserAllReceive(t *testing.T) {
	f := bootstrap(t)
	alice := f.addUser("alice", "en")
	bob := f.addUser("bob", "es")
	f.addRoom("r1", "alice", "bob")

	aliceSess := f.connect(t, alice)
	bobPhone := f.connect(t, bob)
	bobLaptop := f.connect(t, bob)

	f.gw.SendMessage(context.Background(), aliceSess, SendMessagePayload{
		RoomID:           "r1",
		Content:          "ping",
		OriginalLanguage: "en",
	})

	for _, s := range []*Session{bobPhone, bobLaptop} {
		env := recvEvent(t, s)
		assert.Equal(t, EventNewMessage, env.Event)
	}
}
