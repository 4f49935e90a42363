package sessionstore

import (
	"context"
	"sync"

	"github.com/mirelabalan/fanvault/internal/ingestion/application"
	"github.com/mirelabalan/fanvault/internal/ingestion/domain"
)

// MemoryStore keeps sessions in memory, for local mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*domain.Session
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*domain.Session)}
}

var _ application.SessionStore = (*MemoryStore)(nil)

// Get retrieves the operator's session. Returns nil if absent.
func (s *MemoryStore) Get(ctx context.Context, operatorID int64) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[operatorID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

// Put writes the operator's session.
func (s *MemoryStore) Put(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.OperatorID] = &copied
	return nil
}

// Delete removes the operator's session.
func (s *MemoryStore) Delete(ctx context.Context, operatorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, operatorID)
	return nil
}
