package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hms-api/internal/middleware"
	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/service"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/response"
)

// NoticeHandler wires HTTP endpoints to the notice service.
type NoticeHandler struct {
	service     *service.NoticeService
	maxFileSize int64
}

// NewNoticeHandler creates a new handler.
func NewNoticeHandler(svc *service.NoticeService, maxFileSize int64) *NoticeHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &NoticeHandler{service: svc, maxFileSize: maxFileSize}
}

// Create godoc
// @Summary Publish a notice
// @Description Multipart form: title, optional content, target_roles as a
// @Description JSON array, plus optional file attachments
// @Tags Notices
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param content formData string false "Content"
// @Param target_roles formData string true "JSON array of roles"
// @Param files formData file false "Attachments"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
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

	req := service.CreateNoticeRequest{Title: c.PostForm("title")}
	if content := strings.TrimSpace(c.PostForm("content")); content != "" {
		req.Content = &content
	}
	if rolesRaw := c.PostForm("target_roles"); rolesRaw != "" {
		if err := json.Unmarshal([]byte(rolesRaw), &req.TargetRoles); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "target_roles must be a JSON array of roles"))
			return
		}
	}

	attachments, err := h.readAttachments(form)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.Content == nil && len(attachments) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a notice needs content or at least one attachment"))
		return
	}

	notice, err := h.service.Create(c.Request.Context(), claims.UserID, req, attachments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notice)
}

// List godoc
// @Summary List notices for a role
// @Description Students see notices targeted at them; admins may pass any role
// @Tags Notices
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role to list for (admins only)"
// @Success 200 {object} response.Envelope
// @Router /notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	role := claims.Role
	if requested := normalizeStatus(c.Query("role")); requested != "" && claims.Role == models.RoleAdmin {
		role = models.UserRole(requested)
	}

	notices, err := h.service.ListForRole(c.Request.Context(), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, nil)
}

// ListAll godoc
// @Summary List every notice
// @Tags Notices
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/notices [get]
func (h *NoticeHandler) ListAll(c *gin.Context) {
	notices, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, nil)
}

// Delete godoc
// @Summary Delete a notice
// @Tags Notices
// @Security BearerAuth
// @Param id path string true "Notice ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *NoticeHandler) readAttachments(form *multipart.Form) ([]service.Attachment, error) {
	files := form.File["files"]
	attachments := make([]service.Attachment, 0, len(files))
	for _, header := range files {
		att, err := readUpload(header, h.maxFileSize)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}
	return attachments, nil
}

func readUpload(header *multipart.FileHeader, maxSize int64) (service.Attachment, error) {
	if header.Size > maxSize {
		return service.Attachment{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file %s exceeds the %d byte limit", header.Filename, maxSize))
	}
	f, err := header.Open()
	if err != nil {
		return service.Attachment{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return service.Attachment{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file")
	}
	if int64(len(data)) > maxSize {
		return service.Attachment{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file %s exceeds the %d byte limit", header.Filename, maxSize))
	}

	return service.Attachment{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
