package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hms-api/internal/service"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/response"
)

// FloorHandler wires HTTP endpoints to the floor service.
type FloorHandler struct {
	service *service.FloorService
}

// NewFloorHandler creates a new handler.
func NewFloorHandler(svc *service.FloorService) *FloorHandler {
	return &FloorHandler{service: svc}
}

// Create godoc
// @Summary Create floor
// @Tags Floors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateFloorRequest true "Floor payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/floor [post]
func (h *FloorHandler) Create(c *gin.Context) {
	var req service.CreateFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid floor payload"))
		return
	}

	floor, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, floor)
}

// List godoc
// @Summary List floors with rooms
// @Tags Floors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/floors [get]
func (h *FloorHandler) List(c *gin.Context) {
	floors, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, floors, nil)
}
