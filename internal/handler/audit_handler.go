package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sammy002621/parking-management-system-backend/internal/models"
	"github.com/sammy002621/parking-management-system-backend/internal/service"
	"github.com/sammy002621/parking-management-system-backend/pkg/response"
)

// AuditHandler exposes the read side of the action log.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler creates a new handler.
func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary List action logs
// @Description Admin view of the audit trail, newest first
// @Tags ActionLogs
// @Produce json
// @Param user_id query string false "Acting user filter"
// @Param action query string false "Action filter"
// @Param resource query string false "Resource filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /action-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := models.ActionLogFilter{
		UserID:   c.Query("user_id"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, logs, pagination)
}
