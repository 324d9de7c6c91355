// README: In-memory driver store for tests and memory mode.
package driver

import (
	"context"
	"sort"
	"sync"

	"tamarind/internal/types"
)

type MemStore struct {
	mu       sync.RWMutex
	drivers  map[types.ID]Driver
	agencies map[types.ID]Agency
	duty     map[string]map[types.ID]bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		drivers:  make(map[types.ID]Driver),
		agencies: make(map[types.ID]Agency),
		duty:     make(map[string]map[types.ID]bool),
	}
}

func (s *MemStore) AddDriver(d Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = d
}

func (s *MemStore) AddAgency(a Agency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agencies[a.ID] = a
}

func (s *MemStore) ListDrivers(_ context.Context) ([]Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetAgency(_ context.Context, id types.ID) (*Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agencies[id]
	if !ok {
		return nil, ErrAgencyNotFound
	}
	return &a, nil
}

func (s *MemStore) OnDuty(_ context.Context, date types.Date) ([]types.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []types.ID
	for id, on := range s.duty[string(date)] {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemStore) SetDuty(_ context.Context, date types.Date, driverID types.ID, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.duty[string(date)]
	if !ok {
		day = make(map[types.ID]bool)
		s.duty[string(date)] = day
	}
	day[driverID] = on
	return nil
}
