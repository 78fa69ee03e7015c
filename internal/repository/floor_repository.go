package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hostelworks/hms-api/internal/models"
)

// FloorRepository handles persistence of floors.
type FloorRepository struct {
	db *sqlx.DB
}

// NewFloorRepository constructs the repository.
func NewFloorRepository(db *sqlx.DB) *FloorRepository {
	return &FloorRepository{db: db}
}

// Create persists a floor. Duplicate names surface as ErrDuplicateName.
func (r *FloorRepository) Create(ctx context.Context, floor *models.Floor) error {
	if floor.ID == "" {
		floor.ID = uuid.NewString()
	}
	if floor.CreatedAt.IsZero() {
		floor.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO floors (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, floor); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create floor: %w", err)
	}
	return nil
}

// FindByID returns a floor by identifier.
func (r *FloorRepository) FindByID(ctx context.Context, id string) (*models.Floor, error) {
	const query = `SELECT id, name, created_at FROM floors WHERE id = $1 LIMIT 1`
	var floor models.Floor
	if err := r.db.GetContext(ctx, &floor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find floor by id: %w", err)
	}
	return &floor, nil
}

// FindByName returns a floor by its unique name.
func (r *FloorRepository) FindByName(ctx context.Context, name string) (*models.Floor, error) {
	const query = `SELECT id, name, created_at FROM floors WHERE name = $1 LIMIT 1`
	var floor models.Floor
	if err := r.db.GetContext(ctx, &floor, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find floor by name: %w", err)
	}
	return &floor, nil
}

// ListWithRooms returns all floors with their rooms attached.
func (r *FloorRepository) ListWithRooms(ctx context.Context) ([]models.FloorWithRooms, error) {
	const floorQuery = `SELECT id, name, created_at FROM floors ORDER BY name ASC`
	var floors []models.Floor
	if err := r.db.SelectContext(ctx, &floors, floorQuery); err != nil {
		return nil, fmt.Errorf("list floors: %w", err)
	}

	const roomQuery = `SELECT id, name, floor_id, capacity, created_at FROM rooms ORDER BY name ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, roomQuery); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	byFloor := make(map[string][]models.Room, len(floors))
	for _, room := range rooms {
		byFloor[room.FloorID] = append(byFloor[room.FloorID], room)
	}

	result := make([]models.FloorWithRooms, 0, len(floors))
	for _, floor := range floors {
		result = append(result, models.FloorWithRooms{Floor: floor, Rooms: byFloor[floor.ID]})
	}
	return result, nil
}
