// README: Pluggable driver auto-assignment policies.
package driver

import (
	"context"

	"tamarind/internal/modules/booking"
	"tamarind/internal/types"
)

// Loads reports active assignment counts per driver for a date. Satisfied by
// the booking store.
type Loads interface {
	CountActiveByDriver(ctx context.Context, date types.Date) (map[types.ID]int, error)
}

// FirstAvailable picks the first on-duty driver, falling back to the first
// registered driver when nobody has marked duty. This mirrors the original
// placeholder policy.
type FirstAvailable struct {
	Store Store
}

func (p FirstAvailable) Pick(ctx context.Context, date types.Date, _ string) (types.ID, error) {
	onDuty, err := p.Store.OnDuty(ctx, date)
	if err != nil {
		return "", err
	}
	if len(onDuty) > 0 {
		return onDuty[0], nil
	}
	drivers, err := p.Store.ListDrivers(ctx)
	if err != nil {
		return "", err
	}
	if len(drivers) == 0 {
		return "", booking.ErrNoDriver
	}
	return drivers[0].ID, nil
}

// LeastLoaded picks the on-duty driver with the fewest active assignments on
// the date, ties broken by ID for determinism.
type LeastLoaded struct {
	Store Store
	Loads Loads
}

func (p LeastLoaded) Pick(ctx context.Context, date types.Date, _ string) (types.ID, error) {
	onDuty, err := p.Store.OnDuty(ctx, date)
	if err != nil {
		return "", err
	}
	if len(onDuty) == 0 {
		if onDuty, err = allDriverIDs(ctx, p.Store); err != nil {
			return "", err
		}
	}
	if len(onDuty) == 0 {
		return "", booking.ErrNoDriver
	}
	loads, err := p.Loads.CountActiveByDriver(ctx, date)
	if err != nil {
		return "", err
	}
	best := onDuty[0]
	for _, id := range onDuty[1:] {
		if loads[id] < loads[best] || (loads[id] == loads[best] && id < best) {
			best = id
		}
	}
	return best, nil
}

// Manual never auto-assigns; dispatch always assigns by hand.
type Manual struct{}

func (Manual) Pick(context.Context, types.Date, string) (types.ID, error) {
	return "", booking.ErrNoDriver
}

func allDriverIDs(ctx context.Context, store Store) ([]types.ID, error) {
	drivers, err := store.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(drivers))
	for i, d := range drivers {
		ids[i] = d.ID
	}
	return ids, nil
}
