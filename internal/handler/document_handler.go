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

// DocumentHandler wires HTTP endpoints to the document service.
type DocumentHandler struct {
	service     *service.DocumentService
	maxFileSize int64
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(svc *service.DocumentService, maxFileSize int64) *DocumentHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &DocumentHandler{service: svc, maxFileSize: maxFileSize}
}

// Upload godoc
// @Summary Upload documents for verification
// @Description Multipart form: files plus a document_types field per file
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Documents"
// @Param document_types formData string true "One type per file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/upload-documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload"))
		return
	}

	files := form.File["files"]
	types := form.Value["document_types"]
	if len(files) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "at least one file is required"))
		return
	}
	if len(types) != len(files) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "document_types must match the number of files"))
		return
	}

	docs := make([]*models.StudentDocument, 0, len(files))
	for i, header := range files {
		att, err := readUpload(header, h.maxFileSize)
		if err != nil {
			response.Error(c, err)
			return
		}
		doc, err := h.service.Upload(c.Request.Context(), claims.UserID, types[i], att)
		if err != nil {
			response.Error(c, err)
			return
		}
		docs = append(docs, doc)
	}
	response.Created(c, docs)
}

// ListByStudent godoc
// @Summary List a student's documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /student/{id}/documents [get]
func (h *DocumentHandler) ListByStudent(c *gin.Context) {
	docs, err := h.service.ListMine(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// ListAll godoc
// @Summary List documents for review
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /admin/student-documents [get]
func (h *DocumentHandler) ListAll(c *gin.Context) {
	status := models.DocumentStatus(normalizeStatus(c.Query("status")))
	docs, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// Verify godoc
// @Summary Verify or reject a document
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/verify-document [post]
func (h *DocumentHandler) Verify(c *gin.Context) {
	var payload struct {
		DocumentID string `json:"document_id" binding:"required"`
		Status     string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification payload"))
		return
	}

	doc, err := h.service.Verify(c.Request.Context(), payload.DocumentID, models.DocumentStatus(normalizeStatus(payload.Status)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}
