// Package sessionstore persists upload sessions between chat messages.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mirelabalan/fanvault/internal/ingestion/application"
	"github.com/mirelabalan/fanvault/internal/ingestion/domain"
)

// RedisStore keeps sessions in Redis so the wizard survives process
// restarts. Sessions carry no TTL; an abandoned draft waits until the
// operator starts a new one or cancels.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ application.SessionStore = (*RedisStore)(nil)

func sessionKey(operatorID int64) string {
	return fmt.Sprintf("fanvault:ingestion:operator:%d", operatorID)
}

// Get retrieves the operator's session. Returns nil if absent.
func (s *RedisStore) Get(ctx context.Context, operatorID int64) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(operatorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Put writes the operator's session.
func (s *RedisStore) Put(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.OperatorID), data, 0).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Delete removes the operator's session.
func (s *RedisStore) Delete(ctx context.Context, operatorID int64) error {
	if err := s.client.Del(ctx, sessionKey(operatorID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
