package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/repository"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
)

type roomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id string) (*models.Room, error)
	FindByName(ctx context.Context, name string) (*models.Room, error)
	CountOccupants(ctx context.Context, roomID string) (int, error)
	ListAssigned(ctx context.Context) ([]models.Room, error)
}

type roomFloorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Floor, error)
	FindByName(ctx context.Context, name string) (*models.Floor, error)
}

// CreateRoomRequest is the payload for adding a room to a floor. The
// floor may be referenced by ID or by name; ID wins when both are present.
type CreateRoomRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=60"`
	FloorID   string `json:"floor_id" validate:"omitempty,uuid"`
	FloorName string `json:"floor_name" validate:"required_without=FloorID"`
	Capacity  int    `json:"capacity" validate:"required,min=1,max=20"`
}

// RoomStatus is a room plus its live occupancy. The occupant count is
// always read from the database at request time, never cached.
type RoomStatus struct {
	models.Room
	Occupants int `json:"occupants"`
}

// RoomService manages rooms.
type RoomService struct {
	rooms     roomRepository
	floors    roomFloorRepository
	cache     listingCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService constructs a RoomService instance.
func NewRoomService(rooms roomRepository, floors roomFloorRepository, cache listingCache, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoomService{rooms: rooms, floors: floors, cache: cache, validator: validate, logger: logger}
}

// Create adds a room to an existing floor and invalidates the cached
// floor listing, which embeds rooms.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	var (
		floor *models.Floor
		err   error
	)
	if req.FloorID != "" {
		floor, err = s.floors.FindByID(ctx, req.FloorID)
	} else {
		floor, err = s.floors.FindByName(ctx, req.FloorName)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "floor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load floor")
	}

	room := &models.Room{Name: req.Name, FloorID: floor.ID, Capacity: req.Capacity}
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a room with this name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, floorCachePattern); err != nil {
			s.logger.Warn("floor cache invalidation failed", zap.Error(err))
		}
	}
	return room, nil
}

// Get returns a room with its current occupancy.
func (s *RoomService) Get(ctx context.Context, id string) (*RoomStatus, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	occupants, err := s.rooms.CountOccupants(ctx, room.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count occupants")
	}
	return &RoomStatus{Room: *room, Occupants: occupants}, nil
}

// Assigned reports whether the room currently houses at least one student.
func (s *RoomService) Assigned(ctx context.Context, roomID string) (bool, error) {
	status, err := s.Get(ctx, roomID)
	if err != nil {
		return false, err
	}
	return status.Occupants > 0, nil
}

// ListAssigned returns rooms that currently house at least one student.
func (s *RoomService) ListAssigned(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.ListAssigned(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned rooms")
	}
	return rooms, nil
}
