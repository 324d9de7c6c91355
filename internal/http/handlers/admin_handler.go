// README: Admin calendar override handlers (the external write path).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tamarind/internal/modules/session"
	"tamarind/internal/types"
)

type AdminHandler struct {
	sessions *session.Service
}

func NewAdminHandler(svc *session.Service) *AdminHandler {
	return &AdminHandler{sessions: svc}
}

type overrideReq struct {
	Date           string `json:"date"`
	SessionID      string `json:"session_id"`
	IsClosed       bool   `json:"is_closed"`
	ClosureReason  string `json:"closure_reason"`
	CustomCapacity *int   `json:"custom_capacity"`
}

// PutOverride handles PUT /api/admin/overrides.
func (h *AdminHandler) PutOverride(c *gin.Context) {
	var req overrideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	date := types.Date(req.Date)
	if !date.Valid() || req.SessionID == "" {
		writeError(c, http.StatusBadRequest, "invalid date or session_id")
		return
	}
	if _, ok := h.sessions.Get(req.SessionID); !ok {
		writeError(c, http.StatusNotFound, "unknown session")
		return
	}
	ov := session.CalendarOverride{
		Date:           date,
		SessionID:      req.SessionID,
		IsClosed:       req.IsClosed,
		ClosureReason:  req.ClosureReason,
		CustomCapacity: req.CustomCapacity,
	}
	if err := h.sessions.SetOverride(c.Request.Context(), ov); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": req.Date, "session_id": req.SessionID})
}

// DeleteOverride handles DELETE /api/admin/overrides?date=&session_id=.
func (h *AdminHandler) DeleteOverride(c *gin.Context) {
	date, ok := parseDate(c, "date")
	if !ok {
		return
	}
	sessionID := c.Query("session_id")
	if sessionID == "" {
		writeError(c, http.StatusBadRequest, "missing session_id")
		return
	}
	if err := h.sessions.ClearOverride(c.Request.Context(), date, sessionID); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.Status(http.StatusNoContent)
}
