// README: Driver and agency profiles consumed by assignment and pricing.
package driver

import "tamarind/internal/types"

type Driver struct {
	ID    types.ID
	Name  string
	Phone string
}

// Agency is a partner profile whose commission is surfaced as a guest-visible
// discount line on agency-originated bookings.
type Agency struct {
	ID             types.ID
	Name           string
	CommissionRate float64
}
