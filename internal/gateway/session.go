package gateway

import (
	"sync"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
)

// Session is one live authenticated connection. A user may hold several
// concurrent sessions; each tracks at most one currently joined room.
// Session state lives here, never on the transport handle.
type Session struct {
	ID     string
	UserID string
	// User is the profile snapshot taken at connect, used for the
	// public user blobs in broadcasts.
	User *models.User

	mu          sync.Mutex
	currentRoom string

	send chan []byte
	once sync.Once
}

func NewSession(id string, user *models.User, sendBuffer int) *Session {
	return &Session{
		ID:     id,
		UserID: user.ID,
		User:   user,
		send:   make(chan []byte, sendBuffer),
	}
}

func (s *Session) CurrentRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRoom
}

func (s *Session) setCurrentRoom(roomID string) {
	s.mu.Lock()
	s.currentRoom = roomID
	s.mu.Unlock()
}

// clearCurrentRoom resets the room only if it still matches.
func (s *Session) clearCurrentRoom(roomID string) {
	s.mu.Lock()
	if s.currentRoom == roomID {
		s.currentRoom = ""
	}
	s.mu.Unlock()
}

// deliver queues a payload, dropping it when the client cannot keep up.
func (s *Session) deliver(payload []byte) {
	select {
	case s.send <- payload:
	default:
	}
}

func (s *Session) closeSend() {
	s.once.Do(func() { close(s.send) })
}
