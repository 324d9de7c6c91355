// README: Booking aggregate, booking status, and the transport status chain.
package booking

import (
	"time"

	"tamarind/internal/types"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// TransportStatus is a stop's position in the pickup lifecycle.
type TransportStatus string

const (
	TransportWaiting    TransportStatus = "waiting"
	TransportEnRoute    TransportStatus = "driver_en_route"
	TransportArrived    TransportStatus = "driver_arrived"
	TransportOnBoard    TransportStatus = "on_board"
	TransportDroppedOff TransportStatus = "dropped_off"
)

// transportChain is the strictly linear lifecycle. No skipping, no going
// back: a stop's history is always a prefix of this sequence.
var transportChain = []TransportStatus{
	TransportWaiting,
	TransportEnRoute,
	TransportArrived,
	TransportOnBoard,
	TransportDroppedOff,
}

// NextTransport returns the single legal successor of s. ok is false when s
// is terminal or unknown.
func NextTransport(s TransportStatus) (TransportStatus, bool) {
	for i, cur := range transportChain {
		if cur == s && i+1 < len(transportChain) {
			return transportChain[i+1], true
		}
	}
	return "", false
}

// CanTransition reports whether from→to is the one adjacent step forward.
func CanTransition(from, to TransportStatus) bool {
	next, ok := NextTransport(from)
	return ok && next == to
}

// Booking is the central mutable entity. Created only by the admission
// service; transport_status and the actual pickup/dropoff timestamps are
// mutated only through the route service. Bookings are never deleted, only
// cancelled.
type Booking struct {
	ID           types.ID
	SessionID    string
	BookingDate  types.Date
	GuestName    string
	GuestContact string
	HotelName    string
	Pickup       *types.Point
	PaxCount     int
	AgencyID     *types.ID
	Status       Status
	Transport    TransportStatus
	DriverID     *types.ID
	// RouteOrder is nil until the dispatcher sequences the stop. Values
	// within a route are unique once assigned; gaps left by cancellations
	// are never renumbered.
	RouteOrder        *int
	PickupTime        time.Time
	ActualPickupTime  *time.Time
	ActualDropoffTime *time.Time
	Price             types.Money
	Discount          types.Money
	CreatedAt         time.Time
	CancelledAt       *time.Time
}

// Active reports whether the booking still counts toward capacity and route
// sequencing.
func (b *Booking) Active() bool {
	return b.Status != StatusCancelled
}
