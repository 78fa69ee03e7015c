package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelworks/hms-api/internal/models"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// CreatedWithWarning responds with 201 and attaches a non-fatal warning to
// the envelope metadata. Used when a committed mutation succeeded but a
// best-effort side effect (email delivery) did not.
func CreatedWithWarning(c *gin.Context, data interface{}, warning string) {
	if warning == "" {
		Created(c, data)
		return
	}
	JSON(c, http.StatusCreated, data, nil, map[string]interface{}{"warning": warning})
}

// OKWithWarning responds with 200 and an optional warning in the metadata.
func OKWithWarning(c *gin.Context, data interface{}, warning string) {
	if warning == "" {
		JSON(c, http.StatusOK, data, nil)
		return
	}
	JSON(c, http.StatusOK, data, nil, map[string]interface{}{"warning": warning})
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
