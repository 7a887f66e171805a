package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sammy002621/parking-management-system-backend/internal/service"
	"github.com/sammy002621/parking-management-system-backend/pkg/response"
)

// DashboardHandler exposes the admin dashboard summary.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Headline counts for accounts, vehicles, slots, and requests
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}
