package services

import (
	"context"
	"encoding/json"
	"time"

	"storefinder/models"

	"github.com/redis/go-redis/v9"
)

// SessionStore records active sessions keyed by session id. Logout deletes
// the record, which revokes the matching token even before its expiry.
type SessionStore interface {
	Put(ctx context.Context, sid string, user *models.User, ttl time.Duration) error
	Get(ctx context.Context, sid string) (*models.User, error)
	Delete(ctx context.Context, sid string) error
}

// RedisSessionStore keeps the session's user document as JSON in Redis with a
// TTL matching the token lifetime, so the auth middleware resolves the user
// without a database round trip.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Put(ctx context.Context, sid string, user *models.User, ttl time.Duration) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "session:"+sid, userJSON, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sid string) (*models.User, error) {
	userJSON, err := s.client.Get(ctx, "session:"+sid).Result()
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete is idempotent; deleting a missing session is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, "session:"+sid).Err()
}
