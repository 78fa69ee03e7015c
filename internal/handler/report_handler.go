package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hms-api/internal/service"
	"github.com/hostelworks/hms-api/pkg/response"
)

// ReportHandler wires HTTP endpoints to the report service.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Occupancy godoc
// @Summary Download the occupancy report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/reports/occupancy [get]
func (h *ReportHandler) Occupancy(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatCSV)))

	payload, contentType, err := h.service.Occupancy(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("occupancy-%s.%s", time.Now().UTC().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
