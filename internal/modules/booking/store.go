// README: Booking store backed by PostgreSQL; transport writes are CAS.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tamarind/internal/types"
)

var (
	ErrNotFound = errors.New("booking not found")
	// ErrConflict means a compare-and-swap write lost to a concurrent one.
	ErrConflict = errors.New("booking state conflict")
)

// Store is the single owner of booking rows. Route listings are a derived
// view: active bookings for one (date, session) ordered by route_order
// (nulls last) then pickup_time.
type Store interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	SumActivePax(ctx context.Context, date types.Date, sessionID string) (int, error)
	ListRoute(ctx context.Context, date types.Date, sessionID string) ([]Booking, error)
	ListByDriver(ctx context.Context, date types.Date, driverID types.ID) ([]Booking, error)
	CountActiveByDriver(ctx context.Context, date types.Date) (map[types.ID]int, error)
	// UpdateTransport advances transport_status only if the row still holds
	// from; reports false when the swap lost. Entering on_board stamps
	// actual_pickup_time, dropped_off stamps actual_dropoff_time.
	UpdateTransport(ctx context.Context, id types.ID, from, to TransportStatus, at time.Time) (bool, error)
	// UpdateDriver reassigns the pickup driver; legal until dropped_off.
	UpdateDriver(ctx context.Context, id types.ID, driverID types.ID) (bool, error)
	UpdateRouteOrder(ctx context.Context, id types.ID, order int) error
	Cancel(ctx context.Context, id types.ID, at time.Time) (bool, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const bookingColumns = `
    internal_id, session_id, booking_date, guest_name, guest_contact,
    hotel_name, pickup_lat, pickup_lng, pax_count, agency_id,
    status, transport_status, pickup_driver_uid, route_order,
    pickup_time, actual_pickup_time, actual_dropoff_time,
    price, discount, currency, created_at, cancelled_at`

func (s *PGStore) Create(ctx context.Context, b *Booking) error {
	var lat, lng *float64
	if b.Pickup != nil {
		lat, lng = &b.Pickup.Lat, &b.Pickup.Lng
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO bookings (`+bookingColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
                $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		string(b.ID), b.SessionID, string(b.BookingDate), b.GuestName, b.GuestContact,
		b.HotelName, lat, lng, b.PaxCount, idPtr(b.AgencyID),
		string(b.Status), string(b.Transport), idPtr(b.DriverID), b.RouteOrder,
		b.PickupTime, b.ActualPickupTime, b.ActualDropoffTime,
		b.Price.Amount, b.Discount.Amount, b.Price.Currency, b.CreatedAt, b.CancelledAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+bookingColumns+`
        FROM bookings
        WHERE internal_id = $1`, string(id),
	)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *PGStore) SumActivePax(ctx context.Context, date types.Date, sessionID string) (int, error) {
	row := s.db.QueryRow(ctx, `
        SELECT COALESCE(SUM(pax_count), 0)
        FROM bookings
        WHERE booking_date = $1 AND session_id = $2 AND status <> 'cancelled'`,
		string(date), sessionID,
	)
	var sum int
	if err := row.Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

func (s *PGStore) ListRoute(ctx context.Context, date types.Date, sessionID string) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+bookingColumns+`
        FROM bookings
        WHERE booking_date = $1 AND session_id = $2 AND status <> 'cancelled'
        ORDER BY route_order NULLS LAST, pickup_time, internal_id`,
		string(date), sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *PGStore) ListByDriver(ctx context.Context, date types.Date, driverID types.ID) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+bookingColumns+`
        FROM bookings
        WHERE booking_date = $1 AND pickup_driver_uid = $2 AND status <> 'cancelled'
        ORDER BY route_order NULLS LAST, pickup_time, internal_id`,
		string(date), string(driverID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (s *PGStore) CountActiveByDriver(ctx context.Context, date types.Date) (map[types.ID]int, error) {
	rows, err := s.db.Query(ctx, `
        SELECT pickup_driver_uid, COUNT(*)
        FROM bookings
        WHERE booking_date = $1 AND status <> 'cancelled' AND pickup_driver_uid IS NOT NULL
        GROUP BY pickup_driver_uid`,
		string(date),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[types.ID]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[types.ID(id)] = n
	}
	return counts, rows.Err()
}

func (s *PGStore) UpdateTransport(ctx context.Context, id types.ID, from, to TransportStatus, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET transport_status = $1,
            actual_pickup_time = CASE WHEN $1 = 'on_board' THEN $2 ELSE actual_pickup_time END,
            actual_dropoff_time = CASE WHEN $1 = 'dropped_off' THEN $2 ELSE actual_dropoff_time END
        WHERE internal_id = $3 AND transport_status = $4 AND status <> 'cancelled'`,
		string(to), at, string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) UpdateDriver(ctx context.Context, id types.ID, driverID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET pickup_driver_uid = $1
        WHERE internal_id = $2 AND transport_status <> 'dropped_off' AND status <> 'cancelled'`,
		string(driverID), string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) UpdateRouteOrder(ctx context.Context, id types.ID, order int) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET route_order = $1
        WHERE internal_id = $2 AND status <> 'cancelled'`,
		order, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Cancel(ctx context.Context, id types.ID, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET status = 'cancelled', cancelled_at = $1
        WHERE internal_id = $2 AND status <> 'cancelled'`,
		at, string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var guestContact, hotelName sql.NullString
	var lat, lng *float64
	var agencyID, driverID sql.NullString
	var actualPickup, actualDropoff, cancelledAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.SessionID, &b.BookingDate, &b.GuestName, &guestContact,
		&hotelName, &lat, &lng, &b.PaxCount, &agencyID,
		&b.Status, &b.Transport, &driverID, &b.RouteOrder,
		&b.PickupTime, &actualPickup, &actualDropoff,
		&b.Price.Amount, &b.Discount.Amount, &b.Price.Currency, &b.CreatedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}
	b.GuestContact = guestContact.String
	b.HotelName = hotelName.String
	if lat != nil && lng != nil {
		b.Pickup = &types.Point{Lat: *lat, Lng: *lng}
	}
	if agencyID.Valid {
		v := types.ID(agencyID.String)
		b.AgencyID = &v
	}
	if driverID.Valid {
		v := types.ID(driverID.String)
		b.DriverID = &v
	}
	b.ActualPickupTime = timePtr(actualPickup)
	b.ActualDropoffTime = timePtr(actualDropoff)
	b.CancelledAt = timePtr(cancelledAt)
	b.Discount.Currency = b.Price.Currency
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
