package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sammy002621/parking-management-system-backend/internal/service"
	"github.com/sammy002621/parking-management-system-backend/pkg/response"
)

// ReportHandler streams admin exports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Generate godoc
// @Summary Export a report
// @Description Renders the requests or slots dataset as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param subject path string true "Report subject (requests or slots)"
// @Param format query string false "Output format (csv or pdf)" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/{subject} [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	report, err := h.service.Generate(c.Request.Context(), c.Param("subject"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
