package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/repository"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
)

const (
	floorListCacheKey     = "floors:list"
	floorCachePattern     = "floors:*"
	defaultFloorsCacheTTL = 5 * time.Minute
)

type floorRepository interface {
	Create(ctx context.Context, floor *models.Floor) error
	FindByID(ctx context.Context, id string) (*models.Floor, error)
	FindByName(ctx context.Context, name string) (*models.Floor, error)
	ListWithRooms(ctx context.Context) ([]models.FloorWithRooms, error)
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateFloorRequest is the payload for adding a floor.
type CreateFloorRequest struct {
	Name string `json:"name" validate:"required,min=1,max=60"`
}

// FloorService manages floors and the cached floor listing.
type FloorService struct {
	repo      floorRepository
	cache     listingCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFloorService constructs a FloorService instance. Cache may be nil,
// in which case every listing hits the database.
func NewFloorService(repo floorRepository, cache listingCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *FloorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultFloorsCacheTTL
	}
	return &FloorService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Create adds a floor and invalidates the cached listing.
func (s *FloorService) Create(ctx context.Context, req CreateFloorRequest) (*models.Floor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid floor payload")
	}

	floor := &models.Floor{Name: req.Name}
	if err := s.repo.Create(ctx, floor); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a floor with this name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create floor")
	}

	s.invalidate(ctx)
	return floor, nil
}

// List returns all floors with their rooms. The listing is cached;
// occupancy figures are deliberately absent from this shape so nothing
// stale about room availability can ever be served.
func (s *FloorService) List(ctx context.Context) ([]models.FloorWithRooms, error) {
	if s.cache != nil {
		var cached []models.FloorWithRooms
		if err := s.cache.Get(ctx, floorListCacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("floor cache read failed", zap.Error(err))
		}
	}

	floors, err := s.repo.ListWithRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list floors")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, floorListCacheKey, floors, s.cacheTTL); err != nil {
			s.logger.Warn("floor cache write failed", zap.Error(err))
		}
	}
	return floors, nil
}

// Get returns a floor by ID.
func (s *FloorService) Get(ctx context.Context, id string) (*models.Floor, error) {
	floor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "floor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load floor")
	}
	return floor, nil
}

func (s *FloorService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, floorCachePattern); err != nil {
		s.logger.Warn("floor cache invalidation failed", zap.Error(err))
	}
}
