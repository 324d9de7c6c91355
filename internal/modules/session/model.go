// README: Session catalog entries and per-date calendar overrides.
package session

import "tamarind/internal/types"

// Session is an immutable catalog entry for a bookable class offering.
// The catalog is seeded from configuration and never mutated by this module.
type Session struct {
	ID           string
	Label        string
	BasePrice    types.Money
	BaseCapacity int
}

// CalendarOverride is an admin-entered exception for one (date, session).
// At most one override exists per key; the core only reads them.
type CalendarOverride struct {
	Date           types.Date
	SessionID      string
	IsClosed       bool
	ClosureReason  string
	CustomCapacity *int
}
