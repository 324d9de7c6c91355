// README: Admission service tests over the in-memory store.
package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tamarind/internal/config"
	"tamarind/internal/modules/availability"
	"tamarind/internal/modules/session"
	"tamarind/internal/types"
)

const testDate = types.Date("2026-09-14")

type stubPicker struct {
	id  types.ID
	err error
}

func (s stubPicker) Pick(context.Context, types.Date, string) (types.ID, error) {
	return s.id, s.err
}

type stubRates map[types.ID]float64

func (s stubRates) CommissionRate(_ context.Context, id types.ID) (float64, error) {
	rate, ok := s[id]
	if !ok {
		return 0, errors.New("agency not found")
	}
	return rate, nil
}

func testSeeds() []config.SessionSeed {
	return []config.SessionSeed{
		{ID: "morning_class", Label: "Morning Class", BasePrice: 150000, Currency: "THB", BaseCapacity: 12},
		{ID: "evening_class", Label: "Evening Class", BasePrice: 180000, Currency: "THB", BaseCapacity: 10},
	}
}

func newTestService(t *testing.T, picker DriverPicker, rates AgencyRates) (*Service, *session.Service) {
	t.Helper()
	sessions := session.NewService(testSeeds(), session.NewMemStore(), time.Minute)
	return NewService(NewMemStore(), sessions, picker, rates, nil), sessions
}

func admitCmd(pax int) AdmitCommand {
	return AdmitCommand{
		Date:       testDate,
		SessionID:  "morning_class",
		PaxCount:   pax,
		GuestName:  "A. Guest",
		HotelName:  "Riverside Hotel",
		PickupTime: time.Date(2026, 9, 14, 8, 30, 0, 0, time.UTC),
	}
}

func TestAdmitScenario(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService(t, nil, nil)

	res, err := svc.Availability(ctx, testDate, "morning_class")
	require.NoError(t, err)
	assert.Equal(t, availability.StatusOpen, res.Status)
	assert.Equal(t, 12, res.Remaining)

	b, err := svc.Admit(ctx, admitCmd(5))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, TransportWaiting, b.Transport)
	assert.Nil(t, b.RouteOrder)

	res, err = svc.Availability(ctx, testDate, "morning_class")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Remaining)

	_, err = svc.Admit(ctx, admitCmd(8))
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 7, capErr.Remaining)
	assert.Equal(t, availability.StatusOpen, capErr.Status)

	// Closing the date wins regardless of the 7 unconsumed seats.
	require.NoError(t, sessions.SetOverride(ctx, session.CalendarOverride{
		Date:      testDate,
		SessionID: "morning_class",
		IsClosed:  true,
	}))
	res, err = svc.Availability(ctx, testDate, "morning_class")
	require.NoError(t, err)
	assert.Equal(t, availability.StatusClosed, res.Status)
	assert.Equal(t, 0, res.Remaining)

	_, err = svc.Admit(ctx, admitCmd(1))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestAdmitInvalidPartySize(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	for _, pax := range []int{0, -3} {
		_, err := svc.Admit(context.Background(), admitCmd(pax))
		assert.ErrorIs(t, err, ErrInvalidPartySize)
	}
}

func TestAdmitUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	cmd := admitCmd(2)
	cmd.SessionID = "midnight_class"
	_, err := svc.Admit(context.Background(), cmd)
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestAdmitAgencyDiscount(t *testing.T) {
	svc, _ := newTestService(t, nil, stubRates{"agency-1": 0.15})
	cmd := admitCmd(2)
	agency := types.ID("agency-1")
	cmd.AgencyID = &agency

	b, err := svc.Admit(context.Background(), cmd)
	require.NoError(t, err)
	// 1500.00 THB x 2 pax = 3000.00, 15% commission shown as a discount line.
	assert.Equal(t, int64(45000), b.Discount.Amount)
	assert.Equal(t, int64(255000), b.Price.Amount)
	assert.Equal(t, "THB", b.Price.Currency)
}

func TestAdmitRegularGuestNoDiscount(t *testing.T) {
	svc, _ := newTestService(t, nil, stubRates{})
	b, err := svc.Admit(context.Background(), admitCmd(2))
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Discount.Amount)
	assert.Equal(t, int64(300000), b.Price.Amount)
}

func TestAdmitAutoAssignsDriver(t *testing.T) {
	svc, _ := newTestService(t, stubPicker{id: "driver-1"}, nil)
	b, err := svc.Admit(context.Background(), admitCmd(2))
	require.NoError(t, err)
	require.NotNil(t, b.DriverID)
	assert.Equal(t, types.ID("driver-1"), *b.DriverID)
}

// An empty driver pool must not block the booking.
func TestAdmitNoDriverIsNonFatal(t *testing.T) {
	svc, _ := newTestService(t, stubPicker{err: ErrNoDriver}, nil)
	b, err := svc.Admit(context.Background(), admitCmd(2))
	require.NoError(t, err)
	assert.Nil(t, b.DriverID)
}

func TestCancelReleasesCapacity(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil, nil)

	b, err := svc.Admit(ctx, admitCmd(12))
	require.NoError(t, err)

	_, err = svc.Admit(ctx, admitCmd(1))
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 0, capErr.Remaining)

	require.NoError(t, svc.Cancel(ctx, b.ID))

	res, err := svc.Availability(ctx, testDate, "morning_class")
	require.NoError(t, err)
	assert.Equal(t, 12, res.Remaining)
}

func TestCancelUnknownBooking(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	assert.ErrorIs(t, svc.Cancel(context.Background(), "nope"), ErrNotFound)
}
