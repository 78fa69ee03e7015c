package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hostelworks/hms-api/internal/models"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
)

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.MessComplaint) error
	ListByStudent(ctx context.Context, studentID string) ([]models.MessComplaint, error)
	ListAll(ctx context.Context) ([]models.ComplaintDetail, error)
}

// SubmitComplaintRequest is the payload for filing a mess complaint.
type SubmitComplaintRequest struct {
	Complaint string `json:"complaint" validate:"required,min=5,max=2000"`
}

// ComplaintService manages mess complaints.
type ComplaintService struct {
	repo      complaintRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewComplaintService constructs a ComplaintService instance.
func NewComplaintService(repo complaintRepository, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ComplaintService{repo: repo, validator: validate, logger: logger}
}

// Submit files a complaint and assigns it a reference number.
func (s *ComplaintService) Submit(ctx context.Context, studentID string, req SubmitComplaintRequest) (*models.MessComplaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}

	complaint := &models.MessComplaint{
		ComplaintNumber: newComplaintNumber(),
		StudentID:       studentID,
		Complaint:       req.Complaint,
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}
	return complaint, nil
}

// ListMine returns the calling student's complaints.
func (s *ComplaintService) ListMine(ctx context.Context, studentID string) ([]models.MessComplaint, error) {
	complaints, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return complaints, nil
}

// ListAll returns every complaint with the submitting student attached.
func (s *ComplaintService) ListAll(ctx context.Context) ([]models.ComplaintDetail, error) {
	details, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return details, nil
}

func newComplaintNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("CMP-%s", suffix)
}
