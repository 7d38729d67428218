package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for expired or unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

const sessionTTL = 7 * 24 * time.Hour

// Session is the server-side authentication state behind the session cookie,
// distinct from the bearer token.
type Session struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	IsNewUser bool   `json:"isNewUser"`
}

// SessionStore manages server-side sessions.
type SessionStore interface {
	Create(ctx context.Context, session *Session) (string, error)
	Get(ctx context.Context, id string) (*Session, error)
	SetNewUser(ctx context.Context, id string, isNewUser bool) error
	Delete(ctx context.Context, id string) error
}

// RedisSessions stores sessions in Redis with a fixed TTL.
type RedisSessions struct {
	client *redis.Client
}

// NewRedisSessions creates a Redis-backed session store
func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create stores a new session and returns its id
func (s *RedisSessions) Create(ctx context.Context, session *Session) (string, error) {
	id := uuid.New().String()
	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(id), data, sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return id, nil
}

// Get retrieves a session by id
func (s *RedisSessions) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// SetNewUser updates the onboarding flag on a live session
func (s *RedisSessions) SetNewUser(ctx context.Context, id string, isNewUser bool) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	session.IsNewUser = isNewUser
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(id), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Delete removes a session
func (s *RedisSessions) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
