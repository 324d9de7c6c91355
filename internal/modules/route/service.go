// README: Transport state machine, route views, and next-stop sequencing.
package route

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"tamarind/internal/modules/booking"
	"tamarind/internal/types"
)

var (
	// ErrInvalidTransition signals an attempt to skip a state or advance a
	// terminal stop. A defect signal from the caller, not a user error.
	ErrInvalidTransition = errors.New("invalid transport transition")
	ErrNotFound          = booking.ErrNotFound
	ErrConflict          = booking.ErrConflict
)

// Service owns every transport_status mutation. Advances are CAS writes, so
// two driver clients racing on the same stop apply the transition once.
type Service struct {
	store booking.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store booking.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Advance moves the stop to its single legal successor state. When the stop
// lands in on_board, the next waiting stop in the same route is promoted to
// driver_en_route and returned alongside.
func (s *Service) Advance(ctx context.Context, id types.ID) (advanced, promoted *booking.Booking, err error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !b.Active() {
		return nil, nil, ErrInvalidTransition
	}
	next, ok := booking.NextTransport(b.Transport)
	if !ok {
		return nil, nil, ErrInvalidTransition
	}

	now := s.now()
	swapped, err := s.store.UpdateTransport(ctx, id, b.Transport, next, now)
	if err != nil {
		return nil, nil, err
	}
	if !swapped {
		return nil, nil, ErrConflict
	}

	b.Transport = next
	switch next {
	case booking.TransportOnBoard:
		t := now
		b.ActualPickupTime = &t
	case booking.TransportDroppedOff:
		t := now
		b.ActualDropoffTime = &t
	}

	if next == booking.TransportOnBoard {
		promoted, err = s.promoteNext(ctx, b)
		if err != nil {
			// Sequencing is an assist for the dashboards; the boarded stop
			// itself already landed, so surface the advance and log the rest.
			s.log.Error("promote next stop", zap.String("booking_id", string(id)), zap.Error(err))
			return b, nil, nil
		}
	}
	return b, promoted, nil
}

// promoteNext finds the first waiting stop after b in route order and moves
// it waiting → driver_en_route. Stops without a route_order sort after the
// ordered ones (then by pickup time), so they still get their turn.
func (s *Service) promoteNext(ctx context.Context, b *booking.Booking) (*booking.Booking, error) {
	stops, err := s.store.ListRoute(ctx, b.BookingDate, b.SessionID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range stops {
		if stops[i].ID == b.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	for i := idx + 1; i < len(stops); i++ {
		if stops[i].Transport != booking.TransportWaiting {
			continue
		}
		swapped, err := s.store.UpdateTransport(ctx, stops[i].ID, booking.TransportWaiting, booking.TransportEnRoute, s.now())
		if err != nil {
			return nil, err
		}
		if !swapped {
			// Another writer touched this stop between the read and the
			// swap; try the one after it.
			continue
		}
		next := stops[i]
		next.Transport = booking.TransportEnRoute
		return &next, nil
	}
	return nil, nil
}

// Reassign points the stop at a different driver. Legal until dropped_off.
func (s *Service) Reassign(ctx context.Context, id types.ID, driverID types.ID) error {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !b.Active() || b.Transport == booking.TransportDroppedOff {
		return ErrInvalidTransition
	}
	ok, err := s.store.UpdateDriver(ctx, id, driverID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// Route returns the ordered stops for one (date, session).
func (s *Service) Route(ctx context.Context, date types.Date, sessionID string) ([]booking.Booking, error) {
	return s.store.ListRoute(ctx, date, sessionID)
}

// DriverRoute returns the ordered stops assigned to one driver for a date.
func (s *Service) DriverRoute(ctx context.Context, date types.Date, driverID types.ID) ([]booking.Booking, error) {
	return s.store.ListByDriver(ctx, date, driverID)
}
