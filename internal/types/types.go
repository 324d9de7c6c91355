// README: Common value objects shared across modules.
package types

import "time"

// ID is an opaque identifier (UUID for bookings, profile UIDs for people).
type ID string

// DateLayout is the wire/storage format for booking dates.
const DateLayout = "2006-01-02"

// Date is a calendar day, normalized to DateLayout in storage and URLs.
type Date string

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func Today() Date {
	return DateOf(time.Now())
}

func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// Money is an amount in the currency's smallest unit.
type Money struct {
	Amount   int64
	Currency string
}

// Point is a WGS84 coordinate used for pickup stops.
type Point struct {
	Lat float64
	Lng float64
}
