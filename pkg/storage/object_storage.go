package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hostelworks/hms-api/pkg/config"
)

// Uploader stores a blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

// ObjectStorage talks to a Supabase-style object storage HTTP API. Objects go
// to POST {base}/object/{bucket}/{path} and are served publicly from
// {public}/object/public/{bucket}/{path}.
type ObjectStorage struct {
	client        *resty.Client
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// NewObjectStorage builds a storage client from configuration.
func NewObjectStorage(cfg config.StorageConfig, logger *zap.Logger) *ObjectStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(30 * time.Second)
	if cfg.ServiceKey != "" {
		client.SetAuthToken(cfg.ServiceKey)
	}
	return &ObjectStorage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        logger,
	}
}

// Upload writes the object and returns the public URL clients can fetch it
// from. The caller is responsible for making the object path unique.
func (s *ObjectStorage) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	if objectPath == "" {
		return "", fmt.Errorf("object path required")
	}
	objectPath = strings.TrimLeft(objectPath, "/")

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Post(fmt.Sprintf("/object/%s/%s", s.bucket, objectPath))
	if err != nil {
		return "", fmt.Errorf("upload object %s: %w", objectPath, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload object %s: storage replied %d", objectPath, resp.StatusCode())
	}

	s.logger.Debug("object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("path", objectPath),
	)
	return s.PublicURL(objectPath), nil
}

// PublicURL returns the public download URL for a stored object.
func (s *ObjectStorage) PublicURL(objectPath string) string {
	objectPath = strings.TrimLeft(objectPath, "/")
	return fmt.Sprintf("%s/object/public/%s/%s", s.publicBaseURL, s.bucket, objectPath)
}

// WithFileName appends the original file name as a query parameter so the
// client can restore it on download.
func WithFileName(publicURL, fileName string) string {
	if fileName == "" {
		return publicURL
	}
	return publicURL + "?fileName=" + url.QueryEscape(fileName)
}
