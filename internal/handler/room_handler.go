package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hms-api/internal/service"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/response"
)

// RoomHandler wires HTTP endpoints to the room service.
type RoomHandler struct {
	service *service.RoomService
}

// NewRoomHandler creates a new handler.
func NewRoomHandler(svc *service.RoomService) *RoomHandler {
	return &RoomHandler{service: svc}
}

// Create godoc
// @Summary Create room
// @Description Add a room to a floor referenced by id or name
// @Tags Rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateRoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/room [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room payload"))
		return
	}

	room, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Get godoc
// @Summary Get room with live occupancy
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Assigned godoc
// @Summary Check whether a room has occupants
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/room/assigned/{roomId} [get]
func (h *RoomHandler) Assigned(c *gin.Context) {
	assigned, err := h.service.Assigned(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"assigned": assigned}, nil)
}

// ListAssigned godoc
// @Summary List rooms with at least one occupant
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/rooms/assigned [get]
func (h *RoomHandler) ListAssigned(c *gin.Context) {
	rooms, err := h.service.ListAssigned(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}
