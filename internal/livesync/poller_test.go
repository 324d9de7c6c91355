// README: Poller arm/disarm and cancellation tests.
package livesync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tamarind/internal/modules/booking"
	"tamarind/internal/types"
)

const (
	testDate    = types.Date("2026-09-14")
	testSession = "morning_class"
)

func seedBooking(t *testing.T, store *booking.MemStore, id string, transport booking.TransportStatus) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &booking.Booking{
		ID:          types.ID(id),
		SessionID:   testSession,
		BookingDate: testDate,
		PaxCount:    2,
		Status:      booking.StatusConfirmed,
		Transport:   transport,
		PickupTime:  time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC),
	}))
}

func newTestPoller(store *booking.MemStore, interval time.Duration) *Poller {
	p := New(store, interval, nil)
	p.today = func() types.Date { return testDate }
	return p
}

func drain(t *testing.T, h *Handle, timeout time.Duration) [][]booking.Booking {
	t.Helper()
	var snaps [][]booking.Booking
	deadline := time.After(timeout)
	for {
		select {
		case snap, open := <-h.Updates():
			if !open {
				return snaps
			}
			snaps = append(snaps, snap)
		case <-deadline:
			t.Fatal("poller did not close in time")
		}
	}
}

func TestStartDeliversInitialSnapshot(t *testing.T) {
	store := booking.NewMemStore()
	seedBooking(t, store, "b1", booking.TransportWaiting)
	p := newTestPoller(store, 5*time.Millisecond)

	h, err := p.Start(context.Background(), Scope{Date: testDate, SessionID: testSession})
	require.NoError(t, err)
	defer h.Stop()

	snap := <-h.Updates()
	require.Len(t, snap, 1)
	assert.Equal(t, types.ID("b1"), snap[0].ID)
}

// A scope for another day gets its snapshot but never arms.
func TestNotTodayDoesNotArm(t *testing.T) {
	store := booking.NewMemStore()
	seedBooking(t, store, "b1", booking.TransportWaiting)
	p := newTestPoller(store, time.Millisecond)

	h, err := p.Start(context.Background(), Scope{Date: "2026-09-15", SessionID: testSession})
	require.NoError(t, err)

	snaps := drain(t, h, time.Second)
	assert.Len(t, snaps, 1)
}

// All stops already terminal: one snapshot, then the stream ends.
func TestAllDroppedOffDoesNotArm(t *testing.T) {
	store := booking.NewMemStore()
	seedBooking(t, store, "b1", booking.TransportDroppedOff)
	p := newTestPoller(store, time.Millisecond)

	h, err := p.Start(context.Background(), Scope{Date: testDate, SessionID: testSession})
	require.NoError(t, err)

	snaps := drain(t, h, time.Second)
	assert.Len(t, snaps, 1)
}

// The poller keeps ticking while stops are live and disarms itself once the
// last one is dropped off.
func TestSelfDisarmsWhenRouteCompletes(t *testing.T) {
	ctx := context.Background()
	store := booking.NewMemStore()
	seedBooking(t, store, "b1", booking.TransportOnBoard)
	p := newTestPoller(store, time.Millisecond)

	h, err := p.Start(ctx, Scope{Date: testDate, SessionID: testSession})
	require.NoError(t, err)

	ok, err := store.UpdateTransport(ctx, "b1", booking.TransportOnBoard, booking.TransportDroppedOff, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	snaps := drain(t, h, 2*time.Second)
	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]
	require.Len(t, last, 1)
	assert.Equal(t, booking.TransportDroppedOff, last[0].Transport)
}

// Stop cancels the loop; the updates channel closes and no late tick lands.
func TestStopCancelsPromptly(t *testing.T) {
	store := booking.NewMemStore()
	seedBooking(t, store, "b1", booking.TransportWaiting)
	p := newTestPoller(store, time.Millisecond)

	h, err := p.Start(context.Background(), Scope{Date: testDate, SessionID: testSession})
	require.NoError(t, err)

	<-h.Updates()
	h.Stop()

	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-h.Updates():
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("updates channel did not close after Stop")
		}
	}
}

func TestScopeRequiresSessionOrDriver(t *testing.T) {
	p := newTestPoller(booking.NewMemStore(), time.Millisecond)
	_, err := p.Start(context.Background(), Scope{Date: testDate})
	assert.Error(t, err)
}

func TestDriverScope(t *testing.T) {
	ctx := context.Background()
	store := booking.NewMemStore()
	seedBooking(t, store, "b1", booking.TransportWaiting)
	ok, err := store.UpdateDriver(ctx, "b1", "driver-1")
	require.NoError(t, err)
	require.True(t, ok)
	seedBooking(t, store, "b2", booking.TransportWaiting)

	p := newTestPoller(store, time.Millisecond)
	h, err := p.Start(ctx, Scope{Date: testDate, DriverID: "driver-1"})
	require.NoError(t, err)
	defer h.Stop()

	snap := <-h.Updates()
	require.Len(t, snap, 1)
	assert.Equal(t, types.ID("b1"), snap[0].ID)
}
