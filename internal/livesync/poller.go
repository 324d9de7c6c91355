// README: Interval reconciliation of route state for driver dashboards.
package livesync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tamarind/internal/modules/booking"
	"tamarind/internal/types"
)

// Scope selects which bookings a subscriber watches: one (date, session)
// route, or one driver's assignments for a date when DriverID is set.
type Scope struct {
	Date      types.Date
	SessionID string
	DriverID  types.ID
}

// Source is the read side of the booking store the poller reconciles from.
type Source interface {
	ListRoute(ctx context.Context, date types.Date, sessionID string) ([]booking.Booking, error)
	ListByDriver(ctx context.Context, date types.Date, driverID types.ID) ([]booking.Booking, error)
}

// Poller re-reads the scoped bookings on a fixed interval and hands each
// subscriber the whole snapshot; no diffing, the row counts are small.
//
// A handle arms only when the scope is today's date and at least one stop has
// not been dropped off. It disarms itself once every stop is terminal, and
// ticks that land after Stop are discarded rather than delivered.
type Poller struct {
	src      Source
	interval time.Duration
	log      *zap.Logger
	today    func() types.Date
}

func New(src Source, interval time.Duration, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{src: src, interval: interval, log: log, today: types.Today}
}

// Handle is a cancelable subscription. Updates closes when the handle stops,
// whether by Stop, scope completion, or context cancellation.
type Handle struct {
	cancel  context.CancelFunc
	updates chan []booking.Booking
}

func (h *Handle) Updates() <-chan []booking.Booking {
	return h.updates
}

func (h *Handle) Stop() {
	h.cancel()
}

// Start fetches the initial snapshot synchronously, then keeps polling in a
// goroutine until the scope completes or the handle is stopped.
func (p *Poller) Start(ctx context.Context, scope Scope) (*Handle, error) {
	if scope.SessionID == "" && scope.DriverID == "" {
		return nil, fmt.Errorf("livesync scope needs a session or a driver")
	}

	snap, err := p.fetch(ctx, scope)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, updates: make(chan []booking.Booking, 1)}
	h.updates <- snap

	if !p.armed(scope, snap) {
		cancel()
		close(h.updates)
		return h, nil
	}

	go p.run(ctx, scope, h)
	return h, nil
}

func (p *Poller) run(ctx context.Context, scope Scope, h *Handle) {
	defer close(h.updates)

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		snap, err := p.fetch(ctx, scope)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warn("livesync fetch failed",
				zap.String("date", string(scope.Date)),
				zap.String("session_id", scope.SessionID),
				zap.Error(err))
			timer.Reset(p.interval)
			continue
		}

		// The cancellation check sits between fetch and delivery so a tick
		// that raced Stop never reaches the subscriber.
		select {
		case <-ctx.Done():
			return
		case h.updates <- snap:
		}

		if !p.armed(scope, snap) {
			return
		}
		timer.Reset(p.interval)
	}
}

func (p *Poller) fetch(ctx context.Context, scope Scope) ([]booking.Booking, error) {
	if scope.DriverID != "" {
		return p.src.ListByDriver(ctx, scope.Date, scope.DriverID)
	}
	return p.src.ListRoute(ctx, scope.Date, scope.SessionID)
}

func (p *Poller) armed(scope Scope, snap []booking.Booking) bool {
	if scope.Date != p.today() {
		return false
	}
	for i := range snap {
		if snap[i].Transport != booking.TransportDroppedOff {
			return true
		}
	}
	return false
}
