// README: Public session catalog handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tamarind/internal/modules/session"
)

type CatalogHandler struct {
	sessions *session.Service
}

func NewCatalogHandler(svc *session.Service) *CatalogHandler {
	return &CatalogHandler{sessions: svc}
}

// List handles GET /api/sessions.
func (h *CatalogHandler) List(c *gin.Context) {
	out := make([]gin.H, 0)
	for _, s := range h.sessions.List() {
		out = append(out, gin.H{
			"id":           s.ID,
			"label":        s.Label,
			"base_price":   s.BasePrice.Amount,
			"currency":     s.BasePrice.Currency,
			"max_capacity": s.BaseCapacity,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}
