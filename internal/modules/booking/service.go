// README: Booking admission service; serializes admissions per (date, session).
package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tamarind/internal/modules/availability"
	"tamarind/internal/modules/session"
	"tamarind/internal/types"
)

var (
	ErrInvalidPartySize = errors.New("invalid party size")
	ErrUnknownSession   = errors.New("unknown session")
	ErrSessionClosed    = errors.New("session closed")
	// ErrPersistence wraps transient storage failures; callers may retry the
	// whole admission flow, which re-validates availability.
	ErrPersistence = errors.New("persistence failure")
	// ErrNoDriver is returned by assignment policies when no driver can be
	// picked. Admission treats it as non-fatal.
	ErrNoDriver = errors.New("no driver available")
)

// CapacityError rejects an admission that does not fit the remaining seats.
type CapacityError struct {
	Remaining int
	Status    availability.Status
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: only %d seats left", e.Remaining)
}

// DriverPicker selects a driver for a new booking. Implementations live in
// the driver module; Manual policies simply return ErrNoDriver.
type DriverPicker interface {
	Pick(ctx context.Context, date types.Date, sessionID string) (types.ID, error)
}

// AgencyRates resolves an agency's commission rate (0..1).
type AgencyRates interface {
	CommissionRate(ctx context.Context, agencyID types.ID) (float64, error)
}

type Service struct {
	store    Store
	sessions *session.Service
	picker   DriverPicker
	agencies AgencyRates
	log      *zap.Logger

	// admission is a single-writer lock per (date, session): the
	// check-then-insert sequence below must not interleave for the same
	// key, or two requests could both claim the last seat.
	mu        sync.Mutex
	admission map[string]*sync.Mutex
}

func NewService(store Store, sessions *session.Service, picker DriverPicker, agencies AgencyRates, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		sessions:  sessions,
		picker:    picker,
		agencies:  agencies,
		log:       log,
		admission: make(map[string]*sync.Mutex),
	}
}

func (s *Service) admissionLock(date types.Date, sessionID string) *sync.Mutex {
	key := string(date) + "|" + sessionID
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.admission[key]
	if !ok {
		l = &sync.Mutex{}
		s.admission[key] = l
	}
	return l
}

type AdmitCommand struct {
	Date         types.Date
	SessionID    string
	PaxCount     int
	GuestName    string
	GuestContact string
	HotelName    string
	Pickup       *types.Point
	PickupTime   time.Time
	AgencyID     *types.ID
}

// Admit re-checks availability under the per-key lock, prices the booking,
// attempts best-effort driver assignment, and persists the record.
func (s *Service) Admit(ctx context.Context, cmd AdmitCommand) (*Booking, error) {
	if cmd.PaxCount < 1 {
		return nil, ErrInvalidPartySize
	}
	sess, ok := s.sessions.Get(cmd.SessionID)
	if !ok {
		return nil, ErrUnknownSession
	}

	lock := s.admissionLock(cmd.Date, cmd.SessionID)
	lock.Lock()
	defer lock.Unlock()

	res, err := s.availability(ctx, cmd.Date, sess)
	if err != nil {
		return nil, err
	}
	if res.Status == availability.StatusClosed {
		return nil, fmt.Errorf("%w: %s", ErrSessionClosed, res.Reason)
	}
	if res.Status != availability.StatusOpen || res.Remaining < cmd.PaxCount {
		return nil, &CapacityError{Remaining: res.Remaining, Status: res.Status}
	}

	price, discount, err := s.price(ctx, sess, cmd.PaxCount, cmd.AgencyID)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ID:           types.ID(uuid.NewString()),
		SessionID:    cmd.SessionID,
		BookingDate:  cmd.Date,
		GuestName:    cmd.GuestName,
		GuestContact: cmd.GuestContact,
		HotelName:    cmd.HotelName,
		Pickup:       cmd.Pickup,
		PaxCount:     cmd.PaxCount,
		AgencyID:     cmd.AgencyID,
		Status:       StatusConfirmed,
		Transport:    TransportWaiting,
		PickupTime:   cmd.PickupTime,
		Price:        price,
		Discount:     discount,
		CreatedAt:    time.Now().UTC(),
	}

	// Auto-assignment is best-effort: an empty pool never blocks the
	// booking, dispatch can assign manually later.
	if s.picker != nil {
		driverID, err := s.picker.Pick(ctx, cmd.Date, cmd.SessionID)
		switch {
		case err == nil:
			b.DriverID = &driverID
		case errors.Is(err, ErrNoDriver):
			s.log.Warn("driver auto-assignment unavailable",
				zap.String("booking_id", string(b.ID)),
				zap.String("date", string(cmd.Date)),
				zap.String("session_id", cmd.SessionID))
		default:
			s.log.Error("driver auto-assignment failed",
				zap.String("booking_id", string(b.ID)),
				zap.Error(err))
		}
	}

	if err := s.store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return b, nil
}

// Availability computes the guest-facing availability for (date, session)
// from the freshest override and occupancy reads.
func (s *Service) Availability(ctx context.Context, date types.Date, sessionID string) (availability.Result, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return availability.Result{}, ErrUnknownSession
	}
	return s.availability(ctx, date, sess)
}

func (s *Service) availability(ctx context.Context, date types.Date, sess session.Session) (availability.Result, error) {
	override, err := s.sessions.Override(ctx, date, sess.ID)
	if err != nil {
		return availability.Result{}, fmt.Errorf("read override: %w", err)
	}
	occupied, err := s.store.SumActivePax(ctx, date, sess.ID)
	if err != nil {
		return availability.Result{}, fmt.Errorf("sum active pax: %w", err)
	}
	return availability.Compute(sess, override, occupied), nil
}

func (s *Service) price(ctx context.Context, sess session.Session, pax int, agencyID *types.ID) (types.Money, types.Money, error) {
	base := sess.BasePrice.Amount * int64(pax)
	discount := int64(0)
	if agencyID != nil && s.agencies != nil {
		rate, err := s.agencies.CommissionRate(ctx, *agencyID)
		if err != nil {
			return types.Money{}, types.Money{}, fmt.Errorf("agency rate: %w", err)
		}
		discount = int64(math.Round(float64(base) * rate))
	}
	cur := sess.BasePrice.Currency
	return types.Money{Amount: base - discount, Currency: cur},
		types.Money{Amount: discount, Currency: cur}, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// Cancel marks the booking cancelled. It immediately stops counting toward
// capacity; route orders of the surviving stops keep their gaps.
func (s *Service) Cancel(ctx context.Context, id types.ID) error {
	ok, err := s.store.Cancel(ctx, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// AssignRouteOrder sets a stop's position within its route. Dispatcher
// operation; sequencing around the stop is driven by the route service.
func (s *Service) AssignRouteOrder(ctx context.Context, id types.ID, order int) error {
	if order < 0 {
		return fmt.Errorf("route order must be non-negative")
	}
	return s.store.UpdateRouteOrder(ctx, id, order)
}
