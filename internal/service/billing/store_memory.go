// internal/service/billing/store_memory.go
package billing

import (
	"context"
	"sync"

	xerrors "settings-service/internal/pkg/errors"
)

// MemoryStateStore is a process-local StateStore for tests and single
// instance deployments without redis.
type MemoryStateStore struct {
	mu         sync.Mutex
	selections map[int64]Selection
	sessions   map[int64]Session
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		selections: make(map[int64]Selection),
		sessions:   make(map[int64]Session),
	}
}

func (s *MemoryStateStore) GetSelection(ctx context.Context, accountID int64) (*Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[accountID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	out := sel
	return &out, nil
}

func (s *MemoryStateStore) PutSelection(ctx context.Context, sel *Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[sel.AccountID] = *sel
	return nil
}

func (s *MemoryStateStore) GetSession(ctx context.Context, accountID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[accountID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	out := sess
	return &out, nil
}

func (s *MemoryStateStore) PutSession(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.AccountID] = *sess
	return nil
}

func (s *MemoryStateStore) DeleteSession(ctx context.Context, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, accountID)
	return nil
}
