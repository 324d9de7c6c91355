// README: Driver service; duty toggling and agency rate lookups.
package driver

import (
	"context"

	"tamarind/internal/types"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Driver, error) {
	return s.store.ListDrivers(ctx)
}

func (s *Service) SetDuty(ctx context.Context, date types.Date, driverID types.ID, on bool) error {
	return s.store.SetDuty(ctx, date, driverID, on)
}

func (s *Service) OnDuty(ctx context.Context, date types.Date) ([]types.ID, error) {
	return s.store.OnDuty(ctx, date)
}

// CommissionRate implements the booking service's AgencyRates dependency.
func (s *Service) CommissionRate(ctx context.Context, agencyID types.ID) (float64, error) {
	a, err := s.store.GetAgency(ctx, agencyID)
	if err != nil {
		return 0, err
	}
	return a.CommissionRate, nil
}
