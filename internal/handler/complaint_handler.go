package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hms-api/internal/middleware"
	"github.com/hostelworks/hms-api/internal/service"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/response"
)

// ComplaintHandler wires HTTP endpoints to the complaint service.
type ComplaintHandler struct {
	service *service.ComplaintService
}

// NewComplaintHandler creates a new handler.
func NewComplaintHandler(svc *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: svc}
}

// Submit godoc
// @Summary File a mess complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SubmitComplaintRequest true "Complaint payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/complaints [post]
func (h *ComplaintHandler) Submit(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid complaint payload"))
		return
	}

	complaint, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// ListMine godoc
// @Summary List the current student's complaints
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /student/complaints [get]
func (h *ComplaintHandler) ListMine(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	complaints, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, nil)
}

// ListAll godoc
// @Summary List every complaint
// @Tags Complaints
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/complaints [get]
func (h *ComplaintHandler) ListAll(c *gin.Context) {
	complaints, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, nil)
}
