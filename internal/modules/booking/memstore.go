// README: In-memory booking store for tests and memory mode.
package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"tamarind/internal/types"
)

// MemStore keeps bookings in a map guarded by one RWMutex. CAS semantics
// match the Postgres store so the concurrency tests exercise the same
// contract.
type MemStore struct {
	mu       sync.RWMutex
	bookings map[types.ID]*Booking
}

func NewMemStore() *MemStore {
	return &MemStore{bookings: make(map[types.ID]*Booking)}
}

func (s *MemStore) Create(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemStore) SumActivePax(_ context.Context, date types.Date, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := 0
	for _, b := range s.bookings {
		if b.BookingDate == date && b.SessionID == sessionID && b.Active() {
			sum += b.PaxCount
		}
	}
	return sum, nil
}

func (s *MemStore) ListRoute(_ context.Context, date types.Date, sessionID string) ([]Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.BookingDate == date && b.SessionID == sessionID && b.Active() {
			out = append(out, *b)
		}
	}
	sortRoute(out)
	return out, nil
}

func (s *MemStore) ListByDriver(_ context.Context, date types.Date, driverID types.ID) ([]Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.BookingDate == date && b.Active() && b.DriverID != nil && *b.DriverID == driverID {
			out = append(out, *b)
		}
	}
	sortRoute(out)
	return out, nil
}

func (s *MemStore) CountActiveByDriver(_ context.Context, date types.Date) (map[types.ID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[types.ID]int)
	for _, b := range s.bookings {
		if b.BookingDate == date && b.Active() && b.DriverID != nil {
			counts[*b.DriverID]++
		}
	}
	return counts, nil
}

func (s *MemStore) UpdateTransport(_ context.Context, id types.ID, from, to TransportStatus, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || !b.Active() || b.Transport != from {
		return false, nil
	}
	b.Transport = to
	switch to {
	case TransportOnBoard:
		t := at
		b.ActualPickupTime = &t
	case TransportDroppedOff:
		t := at
		b.ActualDropoffTime = &t
	}
	return true, nil
}

func (s *MemStore) UpdateDriver(_ context.Context, id types.ID, driverID types.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || !b.Active() || b.Transport == TransportDroppedOff {
		return false, nil
	}
	d := driverID
	b.DriverID = &d
	return true, nil
}

func (s *MemStore) UpdateRouteOrder(_ context.Context, id types.ID, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || !b.Active() {
		return ErrNotFound
	}
	o := order
	b.RouteOrder = &o
	return nil
}

func (s *MemStore) Cancel(_ context.Context, id types.ID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || !b.Active() {
		return false, nil
	}
	b.Status = StatusCancelled
	t := at
	b.CancelledAt = &t
	return true, nil
}

func sortRoute(bs []Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		a, b := bs[i], bs[j]
		switch {
		case a.RouteOrder != nil && b.RouteOrder != nil && *a.RouteOrder != *b.RouteOrder:
			return *a.RouteOrder < *b.RouteOrder
		case a.RouteOrder != nil && b.RouteOrder == nil:
			return true
		case a.RouteOrder == nil && b.RouteOrder != nil:
			return false
		}
		if !a.PickupTime.Equal(b.PickupTime) {
			return a.PickupTime.Before(b.PickupTime)
		}
		return a.ID < b.ID
	})
}
