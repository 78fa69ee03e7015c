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

// RoomRepository handles persistence of rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create persists a room. Duplicate names surface as ErrDuplicateName.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO rooms (id, name, floor_id, capacity, created_at)
		VALUES (:id, :name, :floor_id, :capacity, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// FindByID returns a room by identifier.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, name, floor_id, capacity, created_at FROM rooms WHERE id = $1 LIMIT 1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find room by id: %w", err)
	}
	return &room, nil
}

// FindByName returns a room by its unique name.
func (r *RoomRepository) FindByName(ctx context.Context, name string) (*models.Room, error) {
	const query = `SELECT id, name, floor_id, capacity, created_at FROM rooms WHERE name = $1 LIMIT 1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find room by name: %w", err)
	}
	return &room, nil
}

// CountOccupants returns the current number of students assigned to a room.
// The count is always read fresh from the assignment table.
func (r *RoomRepository) CountOccupants(ctx context.Context, roomID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_rooms WHERE room_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, roomID); err != nil {
		return 0, fmt.Errorf("count occupants: %w", err)
	}
	return count, nil
}

// ListAssigned returns rooms that currently have at least one occupant.
func (r *RoomRepository) ListAssigned(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT DISTINCT r.id, r.name, r.floor_id, r.capacity, r.created_at
		FROM rooms r
		INNER JOIN student_rooms sr ON sr.room_id = r.id
		ORDER BY r.name ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list assigned rooms: %w", err)
	}
	return rooms, nil
}

// ListOccupancy returns per-room occupancy joined with floor names,
// used by the occupancy report.
func (r *RoomRepository) ListOccupancy(ctx context.Context) ([]models.RoomOccupancy, error) {
	const query = `SELECT f.name AS floor_name, r.name AS room_name, r.capacity,
			COUNT(sr.student_id) AS occupants
		FROM rooms r
		INNER JOIN floors f ON f.id = r.floor_id
		LEFT JOIN student_rooms sr ON sr.room_id = r.id
		GROUP BY f.name, r.name, r.capacity
		ORDER BY f.name ASC, r.name ASC`
	var rows []models.RoomOccupancy
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list occupancy: %w", err)
	}
	return rows, nil
}
