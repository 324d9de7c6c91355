// README: Pure seat availability computation for one (date, session).
package availability

import "tamarind/internal/modules/session"

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusFull   Status = "FULL"
	StatusClosed Status = "CLOSED"
)

// FallbackCapacity applies when a session carries no capacity and no
// override supplies one.
const FallbackCapacity = 12

// Result is the computed availability for a session on one date.
type Result struct {
	Status    Status
	Remaining int
	Reason    string
}

// Compute derives availability from the catalog entry, the calendar override
// (nil when none exists) and the pax already admitted. It has no side
// effects: identical inputs always produce identical output.
//
// Precedence: a closed override wins outright, then the override's custom
// capacity, then the session's base capacity, then FallbackCapacity.
func Compute(sess session.Session, override *session.CalendarOverride, occupiedPax int) Result {
	if override != nil && override.IsClosed {
		reason := override.ClosureReason
		if reason == "" {
			reason = "Closed"
		}
		return Result{Status: StatusClosed, Remaining: 0, Reason: reason}
	}

	capacity := FallbackCapacity
	switch {
	case override != nil && override.CustomCapacity != nil:
		capacity = *override.CustomCapacity
	case sess.BaseCapacity > 0:
		capacity = sess.BaseCapacity
	}

	remaining := capacity - occupiedPax
	if remaining < 0 {
		remaining = 0
	}
	if remaining == 0 {
		return Result{Status: StatusFull, Remaining: 0, Reason: "Fully Booked"}
	}
	return Result{Status: StatusOpen, Remaining: remaining}
}
