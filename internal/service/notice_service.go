package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/hostelworks/hms-api/internal/models"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
	"github.com/hostelworks/hms-api/pkg/storage"
)

const (
	noticeCacheKeyPrefix   = "notices:role:"
	noticeCachePattern     = "notices:*"
	defaultNoticesCacheTTL = 2 * time.Minute
)

type noticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	FindByID(ctx context.Context, id string) (*models.Notice, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.Notice, error)
	ListAll(ctx context.Context) ([]models.Notice, error)
	Delete(ctx context.Context, id string) error
}

// CreateNoticeRequest is the payload for publishing a notice.
type CreateNoticeRequest struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Content     *string  `json:"content" validate:"omitempty,max=10000"`
	TargetRoles []string `json:"target_roles" validate:"required,min=1"`
}

// Attachment is an uploaded file destined for object storage.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// NoticeService publishes and lists notices.
type NoticeService struct {
	repo      noticeRepository
	uploader  storage.Uploader
	cache     listingCache
	cacheTTL  time.Duration
	maxFiles  int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoticeService constructs a NoticeService instance.
func NewNoticeService(repo noticeRepository, uploader storage.Uploader, cache listingCache, cacheTTL time.Duration, maxFiles int, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultNoticesCacheTTL
	}
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &NoticeService{
		repo:      repo,
		uploader:  uploader,
		cache:     cache,
		cacheTTL:  cacheTTL,
		maxFiles:  maxFiles,
		validator: validate,
		logger:    logger,
	}
}

// Create publishes a notice, uploading any attachments to object
// storage first so the stored record only ever references durable URLs.
func (s *NoticeService) Create(ctx context.Context, createdBy string, req CreateNoticeRequest, attachments []Attachment) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}
	for _, role := range req.TargetRoles {
		if !models.ValidRole(models.UserRole(role)) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown target role %q", role))
		}
	}
	if len(attachments) > s.maxFiles {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d attachments are allowed", s.maxFiles))
	}

	urls := make([]string, 0, len(attachments))
	for _, att := range attachments {
		objectPath := path.Join("notices", uuid.NewString()+path.Ext(att.FileName))
		publicURL, err := s.uploader.Upload(ctx, objectPath, att.ContentType, att.Data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrDependency.Code, appErrors.ErrDependency.Status, "failed to upload attachment")
		}
		urls = append(urls, storage.WithFileName(publicURL, att.FileName))
	}

	notice := &models.Notice{
		Title:        req.Title,
		Content:      req.Content,
		DocumentURLs: strings.Join(urls, ","),
		TargetRoles:  pq.StringArray(req.TargetRoles),
		CreatedBy:    createdBy,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}

	s.invalidate(ctx)
	return notice, nil
}

// ListForRole returns notices visible to the given role. Listings are
// cached per role.
func (s *NoticeService) ListForRole(ctx context.Context, role models.UserRole) ([]models.Notice, error) {
	if !models.ValidRole(role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", role))
	}

	key := noticeCacheKeyPrefix + string(role)
	if s.cache != nil {
		var cached []models.Notice
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("notice cache read failed", zap.Error(err))
		}
	}

	notices, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, notices, s.cacheTTL); err != nil {
			s.logger.Warn("notice cache write failed", zap.Error(err))
		}
	}
	return notices, nil
}

// ListAll returns every notice for administrative review.
func (s *NoticeService) ListAll(ctx context.Context) ([]models.Notice, error) {
	notices, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, nil
}

// Delete removes a notice and invalidates cached listings.
func (s *NoticeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	s.invalidate(ctx)
	return nil
}

func (s *NoticeService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, noticeCachePattern); err != nil {
		s.logger.Warn("notice cache invalidation failed", zap.Error(err))
	}
}
