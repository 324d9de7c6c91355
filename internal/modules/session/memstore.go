// README: In-memory override store for tests and memory mode.
package session

import (
	"context"
	"sync"

	"tamarind/internal/types"
)

type MemStore struct {
	mu        sync.RWMutex
	overrides map[string]CalendarOverride
}

func NewMemStore() *MemStore {
	return &MemStore{overrides: make(map[string]CalendarOverride)}
}

func overrideKey(date types.Date, sessionID string) string {
	return string(date) + "|" + sessionID
}

func (s *MemStore) GetOverride(_ context.Context, date types.Date, sessionID string) (*CalendarOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ov, ok := s.overrides[overrideKey(date, sessionID)]
	if !ok {
		return nil, nil
	}
	return &ov, nil
}

func (s *MemStore) UpsertOverride(_ context.Context, ov CalendarOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[overrideKey(ov.Date, ov.SessionID)] = ov
	return nil
}

func (s *MemStore) DeleteOverride(_ context.Context, date types.Date, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, overrideKey(date, sessionID))
	return nil
}

func (s *MemStore) SeedSessions(_ context.Context, _ []Session) error {
	return nil
}
