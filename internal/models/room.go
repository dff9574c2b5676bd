package models

import "time"

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"

	MaxRoomNameLen        = 50
	MaxRoomDescriptionLen = 200
	DefaultMaxMembers     = 100
)

type Membership struct {
	UserID   string    `bson:"user_id" json:"user_id"`
	Role     string    `bson:"role" json:"role"`
	JoinedAt time.Time `bson:"joined_at" json:"joined_at"`
}

type Room struct {
	ID           string       `bson:"_id" json:"id"`
	Name         string       `bson:"name" json:"name"`
	Description  string       `bson:"description" json:"description"`
	IsPrivate    bool         `bson:"is_private" json:"is_private"`
	AdminID      string       `bson:"admin_id" json:"admin_id"`
	Members      []Membership `bson:"members" json:"members"`
	MaxMembers   int          `bson:"max_members" json:"max_members"`
	IsActive     bool         `bson:"is_active" json:"is_active"`
	LastActivity time.Time    `bson:"last_activity" json:"last_activity"`
	CreatedAt    time.Time    `bson:"created_at" json:"created_at"`
}

func (r *Room) IsMember(userID string) bool {
	for _, m := range r.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// AddMember appends a membership entry and bumps last-activity.
// No-op when the user is already a member; the membership list never
// holds duplicate user ids.
func (r *Room) AddMember(userID, role string) {
	if r.IsMember(userID) {
		return
	}
	if role == "" {
		role = RoleMember
	}
	r.Members = append(r.Members, Membership{
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	})
	r.LastActivity = time.Now().UTC()
}

func (r *Room) RemoveMember(userID string) {
	kept := r.Members[:0]
	for _, m := range r.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	r.Members = kept
	r.LastActivity = time.Now().UTC()
}

func (r *Room) MemberCount() int {
	return len(r.Members)
}

func (r *Room) IsFull() bool {
	return r.MemberCount() >= r.MaxMembers
}

// MemberIDs returns the ids of all current members.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}
