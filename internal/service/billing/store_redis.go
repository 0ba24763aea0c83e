// internal/service/billing/store_redis.go
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	xerrors "settings-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore keeps selections and checkout sessions in redis so
// every instance of the service sees the same single-flight state.
type RedisStateStore struct {
	client     *redis.Client
	sessionTTL time.Duration
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{
		client:     client,
		sessionTTL: 30 * time.Minute,
	}
}

func selectionKey(accountID int64) string {
	return fmt.Sprintf("billing:selection:%d", accountID)
}

func sessionKey(accountID int64) string {
	return fmt.Sprintf("billing:checkout:%d", accountID)
}

func (s *RedisStateStore) GetSelection(ctx context.Context, accountID int64) (*Selection, error) {
	raw, err := s.client.Get(ctx, selectionKey(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	var sel Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("failed to decode selection: %w", err)
	}
	return &sel, nil
}

func (s *RedisStateStore) PutSelection(ctx context.Context, sel *Selection) error {
	raw, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	if err := s.client.Set(ctx, selectionKey(sel.AccountID), raw, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to store selection: %w", err)
	}
	return nil
}

func (s *RedisStateStore) GetSession(ctx context.Context, accountID int64) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStateStore) PutSession(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.AccountID), raw, s.sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	return nil
}

func (s *RedisStateStore) DeleteSession(ctx context.Context, accountID int64) error {
	if err := s.client.Del(ctx, sessionKey(accountID)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}
