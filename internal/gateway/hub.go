package gateway

import "sync"

// Hub is the session registry. It tracks transport-level room
// subscriptions and the private per-user channels that reach all of a
// user's sessions regardless of which room each is viewing.
type Hub struct {
	mu     sync.RWMutex
	byRoom map[string]map[*Session]struct{}
	byUser map[string]map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{
		byRoom: make(map[string]map[*Session]struct{}),
		byUser: make(map[string]map[*Session]struct{}),
	}
}

// Register joins the session to its user's private channel.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byUser[s.UserID]; !ok {
		h.byUser[s.UserID] = make(map[*Session]struct{})
	}
	h.byUser[s.UserID][s] = struct{}{}
}

func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.byUser[s.UserID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.byUser, s.UserID)
		}
	}
	for roomID, set := range h.byRoom {
		delete(set, s)
		if len(set) == 0 {
			delete(h.byRoom, roomID)
		}
	}
}

func (h *Hub) Subscribe(roomID string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byRoom[roomID]; !ok {
		h.byRoom[roomID] = make(map[*Session]struct{})
	}
	h.byRoom[roomID][s] = struct{}{}
}

func (h *Hub) Unsubscribe(roomID string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.byRoom[roomID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.byRoom, roomID)
		}
	}
}

// BroadcastToRoom delivers to every session subscribed to the room.
// except may be nil.
func (h *Hub) BroadcastToRoom(roomID string, payload []byte, except *Session) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.byRoom[roomID] {
		if s == except {
			continue
		}
		s.deliver(payload)
	}
}

// SendToUser delivers to all of the user's active sessions.
func (h *Hub) SendToUser(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.byUser[userID] {
		s.deliver(payload)
	}
}
