package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hms-api/internal/middleware"
	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/service"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/response"
)

// RoomChangeHandler wires HTTP endpoints to the room change service.
type RoomChangeHandler struct {
	service *service.RoomChangeService
	metrics *service.MetricsService
}

// NewRoomChangeHandler creates a new handler.
func NewRoomChangeHandler(svc *service.RoomChangeService, metrics *service.MetricsService) *RoomChangeHandler {
	return &RoomChangeHandler{service: svc, metrics: metrics}
}

// Submit godoc
// @Summary Submit a room change request
// @Tags RoomChanges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.SubmitRoomChangeRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/room-change-request [post]
func (h *RoomChangeHandler) Submit(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SubmitRoomChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room change payload"))
		return
	}

	request, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListMine godoc
// @Summary List the current student's room change requests
// @Tags RoomChanges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /student/room-change-request [get]
func (h *RoomChangeHandler) ListMine(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// List godoc
// @Summary List room change requests for review
// @Tags RoomChanges
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /admin/room-change-requests [get]
func (h *RoomChangeHandler) List(c *gin.Context) {
	status := models.RoomChangeStatus(normalizeStatus(c.Query("status")))

	requests, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

func normalizeStatus(raw string) string {
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Decide godoc
// @Summary Approve or reject a room change request
// @Tags RoomChanges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.DecideRoomChangeRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/room-change-request/status [put]
func (h *RoomChangeHandler) Decide(c *gin.Context) {
	var req models.DecideRoomChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	decided, warning, err := h.service.Decide(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordRoomChangeDecision("failed")
		response.Error(c, err)
		return
	}
	h.metrics.RecordRoomChangeDecision(strings.ToLower(string(decided.Status)))
	if warning != "" {
		h.metrics.RecordMailFailure()
		response.OKWithWarning(c, decided, warning)
		return
	}
	response.JSON(c, http.StatusOK, decided, nil)
}
