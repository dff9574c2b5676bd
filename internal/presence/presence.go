package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker records online/offline state and last-seen per user.
type Tracker interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (Status, error)
}

type Status struct {
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

// RedisTracker keeps presence in Redis so the HTTP layer (and any other
// instance) can read it.
type RedisTracker struct {
	client *redis.Client
	prefix string
}

func NewRedisTracker(client *redis.Client, prefix string) *RedisTracker {
	return &RedisTracker{client: client, prefix: prefix}
}

func (t *RedisTracker) key(userID string) string {
	return t.prefix + ":presence:" + userID
}

func (t *RedisTracker) set(ctx context.Context, userID string, online bool) error {
	b, err := json.Marshal(Status{Online: online, LastSeen: time.Now().UTC()})
	if err != nil {
		return err
	}
	return t.client.Set(ctx, t.key(userID), b, 0).Err()
}

func (t *RedisTracker) SetOnline(ctx context.Context, userID string) error {
	return t.set(ctx, userID, true)
}

func (t *RedisTracker) SetOffline(ctx context.Context, userID string) error {
	return t.set(ctx, userID, false)
}

func (t *RedisTracker) Get(ctx context.Context, userID string) (Status, error) {
	b, err := t.client.Get(ctx, t.key(userID)).Bytes()
	if err == redis.Nil {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}
	var s Status
	if err := json.Unmarshal(b, &s); err != nil {
		return Status{}, err
	}
	return s, nil
}
