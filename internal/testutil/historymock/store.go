package historymock

import (
	"context"
	"sync"

	domain "credapp/internal/domain/history"
)

var _ domain.Store = (*Store)(nil)

// Store is an in-memory history store. Set the Err fields to make the
// matching method fail.
type Store struct {
	mu      sync.Mutex
	entries map[string][]domain.Entry

	AppendErr error
	ListErr   error
	ClearErr  error
}

func New() *Store { return &Store{entries: map[string][]domain.Entry{}} }

func (s *Store) Append(ctx context.Context, e domain.Entry) error {
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = map[string][]domain.Entry{}
	}
	s.entries[e.SessionID] = append(s.entries[e.SessionID], e)
	return nil
}

func (s *Store) List(ctx context.Context, sessionID string) ([]domain.Entry, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Entry{}, s.entries[sessionID]...), nil
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
