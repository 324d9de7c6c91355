// README: Driver pool handlers: listing and duty toggling.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tamarind/internal/modules/driver"
	"tamarind/internal/types"
)

type DriverHandler struct {
	drivers *driver.Service
}

func NewDriverHandler(svc *driver.Service) *DriverHandler {
	return &DriverHandler{drivers: svc}
}

// List handles GET /api/drivers.
func (h *DriverHandler) List(c *gin.Context) {
	ds, err := h.drivers.List(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]gin.H, len(ds))
	for i, d := range ds {
		out[i] = gin.H{"id": d.ID, "name": d.Name, "phone": d.Phone}
	}
	c.JSON(http.StatusOK, gin.H{"drivers": out})
}

type dutyReq struct {
	Date   string `json:"date"`
	OnDuty bool   `json:"on_duty"`
}

// SetDuty handles POST /api/drivers/:id/duty.
func (h *DriverHandler) SetDuty(c *gin.Context) {
	var req dutyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	date := types.Date(req.Date)
	if !date.Valid() {
		writeError(c, http.StatusBadRequest, "invalid date")
		return
	}
	if err := h.drivers.SetDuty(c.Request.Context(), date, types.ID(c.Param("id")), req.OnDuty); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"on_duty": req.OnDuty})
}
