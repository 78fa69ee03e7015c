package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hostelworks/hms-api/internal/models"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/storage"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.StudentDocument) error
	FindByID(ctx context.Context, id string) (*models.StudentDocument, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentDocument, error)
	ListAll(ctx context.Context, status models.DocumentStatus) ([]models.DocumentDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.DocumentStatus) error
}

// DocumentService manages student document uploads and verification.
type DocumentService struct {
	repo        documentRepository
	uploader    storage.Uploader
	maxFileSize int64
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(repo documentRepository, uploader storage.Uploader, maxFileSize int64, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	return &DocumentService{repo: repo, uploader: uploader, maxFileSize: maxFileSize, validator: validate, logger: logger}
}

// Upload stores the file in object storage and records it as Pending.
func (s *DocumentService) Upload(ctx context.Context, studentID, documentType string, file Attachment) (*models.StudentDocument, error) {
	if documentType == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "document type is required")
	}
	if len(file.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if int64(len(file.Data)) > s.maxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxFileSize))
	}

	objectPath := path.Join("documents", studentID, uuid.NewString()+path.Ext(file.FileName))
	publicURL, err := s.uploader.Upload(ctx, objectPath, file.ContentType, file.Data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDependency.Code, appErrors.ErrDependency.Status, "failed to upload document")
	}

	doc := &models.StudentDocument{
		StudentID:    studentID,
		DocumentURL:  storage.WithFileName(publicURL, file.FileName),
		DocumentType: documentType,
		Status:       models.DocumentPending,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}
	return doc, nil
}

// ListMine returns the calling student's documents.
func (s *DocumentService) ListMine(ctx context.Context, studentID string) ([]models.StudentDocument, error) {
	docs, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}

// List returns documents for review, optionally filtered by status.
func (s *DocumentService) List(ctx context.Context, status models.DocumentStatus) ([]models.DocumentDetail, error) {
	if status != "" && status != models.DocumentPending && !models.VerifiableStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}
	details, err := s.repo.ListAll(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return details, nil
}

// Verify moves a document to Verified or Rejected.
func (s *DocumentService) Verify(ctx context.Context, id string, status models.DocumentStatus) (*models.StudentDocument, error) {
	if !models.VerifiableStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("status must be %s or %s", models.DocumentVerified, models.DocumentRejected))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}
