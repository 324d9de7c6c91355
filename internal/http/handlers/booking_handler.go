// README: Guest-facing booking handlers: availability, create, cancel.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tamarind/internal/modules/booking"
	"tamarind/internal/types"
)

type BookingHandler struct {
	bookings *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{bookings: svc}
}

// Availability handles GET /api/availability?date=&session_id=.
func (h *BookingHandler) Availability(c *gin.Context) {
	date, ok := parseDate(c, "date")
	if !ok {
		return
	}
	sessionID := c.Query("session_id")
	if sessionID == "" {
		writeError(c, http.StatusBadRequest, "missing session_id")
		return
	}
	res, err := h.bookings.Availability(c.Request.Context(), date, sessionID)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    res.Status,
		"remaining": res.Remaining,
		"reason":    res.Reason,
	})
}

type createBookingReq struct {
	Date         string   `json:"booking_date"`
	SessionID    string   `json:"session_id"`
	PaxCount     int      `json:"pax_count"`
	GuestName    string   `json:"guest_name"`
	GuestContact string   `json:"guest_contact"`
	HotelName    string   `json:"hotel_name"`
	PickupLat    *float64 `json:"pickup_lat"`
	PickupLng    *float64 `json:"pickup_lng"`
	PickupTime   string   `json:"pickup_time"`
	AgencyID     string   `json:"agency_id"`
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	date := types.Date(req.Date)
	if !date.Valid() {
		writeError(c, http.StatusBadRequest, "invalid booking_date")
		return
	}
	if req.SessionID == "" || req.GuestName == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	pickupTime, err := time.Parse(time.RFC3339, req.PickupTime)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid pickup_time")
		return
	}

	cmd := booking.AdmitCommand{
		Date:         date,
		SessionID:    req.SessionID,
		PaxCount:     req.PaxCount,
		GuestName:    req.GuestName,
		GuestContact: req.GuestContact,
		HotelName:    req.HotelName,
		PickupTime:   pickupTime,
	}
	if req.PickupLat != nil && req.PickupLng != nil {
		cmd.Pickup = &types.Point{Lat: *req.PickupLat, Lng: *req.PickupLng}
	}
	if req.AgencyID != "" {
		id := types.ID(req.AgencyID)
		cmd.AgencyID = &id
	}

	b, err := h.bookings.Admit(c.Request.Context(), cmd)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(b))
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(b))
}

// Cancel handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	if err := h.bookings.Cancel(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": booking.StatusCancelled})
}

type routeOrderReq struct {
	RouteOrder int `json:"route_order"`
}

// SetRouteOrder handles POST /api/bookings/:id/route-order (dispatcher).
func (h *BookingHandler) SetRouteOrder(c *gin.Context) {
	var req routeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.bookings.AssignRouteOrder(c.Request.Context(), types.ID(c.Param("id")), req.RouteOrder); err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route_order": req.RouteOrder})
}
