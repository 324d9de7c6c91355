// README: Shared handler utilities (JSON views, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tamarind/internal/modules/booking"
	"tamarind/internal/modules/route"
	"tamarind/internal/types"
)

type errorResponse struct {
	Error     string `json:"error"`
	Remaining *int   `json:"remaining,omitempty"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writeBookingError(c *gin.Context, err error) {
	var capErr *booking.CapacityError
	switch {
	case errors.As(err, &capErr):
		r := capErr.Remaining
		c.JSON(http.StatusConflict, errorResponse{Error: capErr.Error(), Remaining: &r})
	case errors.Is(err, booking.ErrInvalidPartySize):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrUnknownSession):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrSessionClosed):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrConflict), errors.Is(err, route.ErrInvalidTransition):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrPersistence):
		writeError(c, http.StatusServiceUnavailable, "temporary storage failure, retry the request")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// bookingView is the wire shape of a booking.
type bookingView struct {
	ID                string     `json:"internal_id"`
	SessionID         string     `json:"session_id"`
	BookingDate       string     `json:"booking_date"`
	GuestName         string     `json:"guest_name"`
	HotelName         string     `json:"hotel_name,omitempty"`
	PaxCount          int        `json:"pax_count"`
	Status            string     `json:"status"`
	TransportStatus   string     `json:"transport_status"`
	PickupDriverUID   *string    `json:"pickup_driver_uid"`
	RouteOrder        *int       `json:"route_order"`
	PickupTime        time.Time  `json:"pickup_time"`
	ActualPickupTime  *time.Time `json:"actual_pickup_time,omitempty"`
	ActualDropoffTime *time.Time `json:"actual_dropoff_time,omitempty"`
	Price             int64      `json:"price"`
	Discount          int64      `json:"discount,omitempty"`
	Currency          string     `json:"currency"`
}

func viewOf(b *booking.Booking) bookingView {
	v := bookingView{
		ID:                string(b.ID),
		SessionID:         b.SessionID,
		BookingDate:       string(b.BookingDate),
		GuestName:         b.GuestName,
		HotelName:         b.HotelName,
		PaxCount:          b.PaxCount,
		Status:            string(b.Status),
		TransportStatus:   string(b.Transport),
		RouteOrder:        b.RouteOrder,
		PickupTime:        b.PickupTime,
		ActualPickupTime:  b.ActualPickupTime,
		ActualDropoffTime: b.ActualDropoffTime,
		Price:             b.Price.Amount,
		Discount:          b.Discount.Amount,
		Currency:          b.Price.Currency,
	}
	if b.DriverID != nil {
		s := string(*b.DriverID)
		v.PickupDriverUID = &s
	}
	return v
}

func viewsOf(bs []booking.Booking) []bookingView {
	out := make([]bookingView, len(bs))
	for i := range bs {
		out[i] = viewOf(&bs[i])
	}
	return out
}

func parseDate(c *gin.Context, param string) (types.Date, bool) {
	d := types.Date(c.Query(param))
	if !d.Valid() {
		writeError(c, http.StatusBadRequest, "invalid or missing date")
		return "", false
	}
	return d, true
}
