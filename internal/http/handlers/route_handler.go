// README: Driver-facing route handlers: views, advance, reassign, stream.
package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tamarind/internal/livesync"
	"tamarind/internal/modules/booking"
	"tamarind/internal/modules/route"
	"tamarind/internal/types"
)

type RouteHandler struct {
	routes *route.Service
	eta    *route.Estimator
	sync   *livesync.Poller
}

func NewRouteHandler(routes *route.Service, eta *route.Estimator, sync *livesync.Poller) *RouteHandler {
	return &RouteHandler{routes: routes, eta: eta, sync: sync}
}

// List handles GET /api/routes?date=&session_id= (or &driver_id=).
func (h *RouteHandler) List(c *gin.Context) {
	date, ok := parseDate(c, "date")
	if !ok {
		return
	}
	var stops []booking.Booking
	var err error
	if driverID := c.Query("driver_id"); driverID != "" {
		stops, err = h.routes.DriverRoute(c.Request.Context(), date, types.ID(driverID))
	} else if sessionID := c.Query("session_id"); sessionID != "" {
		stops, err = h.routes.Route(c.Request.Context(), date, sessionID)
	} else {
		writeError(c, http.StatusBadRequest, "missing session_id or driver_id")
		return
	}
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": viewsOf(stops)})
}

// ETAs handles GET /api/routes/etas?date=&session_id=.
func (h *RouteHandler) ETAs(c *gin.Context) {
	date, ok := parseDate(c, "date")
	if !ok {
		return
	}
	sessionID := c.Query("session_id")
	if sessionID == "" {
		writeError(c, http.StatusBadRequest, "missing session_id")
		return
	}
	stops, err := h.routes.Route(c.Request.Context(), date, sessionID)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	legs, err := h.eta.RouteETAs(c.Request.Context(), stops)
	if err != nil {
		writeError(c, http.StatusBadGateway, "eta estimation failed")
		return
	}
	out := make([]gin.H, len(legs))
	for i, leg := range legs {
		out[i] = gin.H{
			"from_id":          leg.FromID,
			"to_id":            leg.ToID,
			"duration_seconds": int(leg.Duration / time.Second),
		}
	}
	c.JSON(http.StatusOK, gin.H{"legs": out})
}

// Advance handles POST /api/bookings/:id/advance.
func (h *RouteHandler) Advance(c *gin.Context) {
	advanced, promoted, err := h.routes.Advance(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	resp := gin.H{"booking": viewOf(advanced)}
	if promoted != nil {
		resp["promoted"] = viewOf(promoted)
	}
	c.JSON(http.StatusOK, resp)
}

type reassignReq struct {
	DriverID string `json:"driver_id"`
}

// Reassign handles POST /api/bookings/:id/reassign.
func (h *RouteHandler) Reassign(c *gin.Context) {
	var req reassignReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "missing driver_id")
		return
	}
	if err := h.routes.Reassign(c.Request.Context(), types.ID(c.Param("id")), types.ID(req.DriverID)); err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pickup_driver_uid": req.DriverID})
}

// Stream handles GET /api/routes/stream?date=&session_id= as SSE. Each event
// is the full snapshot for the scope; the stream ends when every stop is
// dropped off or the client disconnects.
func (h *RouteHandler) Stream(c *gin.Context) {
	date, ok := parseDate(c, "date")
	if !ok {
		return
	}
	scope := livesync.Scope{
		Date:      date,
		SessionID: c.Query("session_id"),
		DriverID:  types.ID(c.Query("driver_id")),
	}
	handle, err := h.sync.Start(c.Request.Context(), scope)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	defer handle.Stop()

	c.Stream(func(_ io.Writer) bool {
		snap, open := <-handle.Updates()
		if !open {
			return false
		}
		c.SSEvent("route", gin.H{"stops": viewsOf(snap)})
		return true
	})
}
