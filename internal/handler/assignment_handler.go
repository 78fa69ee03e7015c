package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hms-api/internal/middleware"
	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/service"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/response"
)

// AssignmentHandler wires HTTP endpoints to the assignment service.
type AssignmentHandler struct {
	service *service.AssignmentService
	metrics *service.MetricsService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(svc *service.AssignmentService, metrics *service.MetricsService) *AssignmentHandler {
	return &AssignmentHandler{service: svc, metrics: metrics}
}

// Assign godoc
// @Summary Assign a student to a room
// @Description Resolve the room, provision the student if needed and assign,
// @Description enforcing room capacity atomically
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AssignRoomRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/room/assign [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req models.AssignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	detail, warning, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordAssignment("rejected")
		response.Error(c, err)
		return
	}
	h.metrics.RecordAssignment("assigned")
	if warning != "" {
		h.metrics.RecordMailFailure()
		response.CreatedWithWarning(c, detail, warning)
		return
	}
	response.Created(c, detail)
}

// MyRoom godoc
// @Summary Current student's room assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/room [get]
func (h *AssignmentHandler) MyRoom(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.RoomAssigned(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Occupants godoc
// @Summary List occupants of a room
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/rooms/{id}/occupants [get]
func (h *AssignmentHandler) Occupants(c *gin.Context) {
	occupants, err := h.service.Occupants(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occupants, nil)
}
