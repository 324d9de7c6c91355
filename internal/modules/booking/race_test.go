// README: Concurrency tests for seat admission (run with -race).
package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tamarind/internal/modules/availability"
)

// Two admissions racing for the last seat: exactly one may win.
func TestConcurrentAdmissionLastSeat(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil, nil)

	_, err := svc.Admit(ctx, admitCmd(11))
	require.NoError(t, err)

	const attempts = 8
	start := make(chan struct{})
	errs := make(chan error, attempts)
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			cmd := admitCmd(1)
			cmd.GuestName = fmt.Sprintf("guest-%d", n)
			_, err := svc.Admit(ctx, cmd)
			errs <- err
		}(i)
	}

	close(start)
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
	}
	require.Equal(t, 1, success, "exactly one admission may claim the last seat")

	res, err := svc.Availability(ctx, testDate, "morning_class")
	require.NoError(t, err)
	require.Equal(t, availability.StatusFull, res.Status)
	require.Equal(t, 0, res.Remaining)
}

// Capacity monotonicity: whatever interleaving wins, admitted pax never
// exceeds the effective capacity.
func TestConcurrentAdmissionNeverOversells(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil, nil)

	const attempts = 20
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			cmd := admitCmd(1 + n%3)
			cmd.GuestName = fmt.Sprintf("guest-%d", n)
			_, _ = svc.Admit(ctx, cmd)
		}(i)
	}

	close(start)
	wg.Wait()

	res, err := svc.Availability(ctx, testDate, "morning_class")
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Remaining, 0)

	occupied, err := svc.store.SumActivePax(ctx, testDate, "morning_class")
	require.NoError(t, err)
	require.LessOrEqual(t, occupied, 12)
}
