package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hostelworks/hms-api/internal/models"
)

// AssignmentRepository handles persistence of student room assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByStudent returns the active assignment for a student, or
// sql.ErrNoRows when the student is unhoused.
func (r *AssignmentRepository) FindByStudent(ctx context.Context, studentID string) (*models.StudentRoom, error) {
	const query = `SELECT student_id, room_id, assigned_at, updated_at
		FROM student_rooms WHERE student_id = $1 LIMIT 1`
	var assignment models.StudentRoom
	if err := r.db.GetContext(ctx, &assignment, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by student: %w", err)
	}
	return &assignment, nil
}

// FindDetailByStudent returns the active assignment enriched with
// student and room columns.
func (r *AssignmentRepository) FindDetailByStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error) {
	const query = `SELECT sr.student_id, sr.room_id, sr.assigned_at, sr.updated_at,
			u.full_name AS student_name, u.email AS student_email,
			rm.name AS room_name, rm.capacity AS room_capacity
		FROM student_rooms sr
		INNER JOIN users u ON u.id = sr.student_id
		INNER JOIN rooms rm ON rm.id = sr.room_id
		WHERE sr.student_id = $1 LIMIT 1`
	var detail models.AssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment detail: %w", err)
	}
	return &detail, nil
}

// ListByRoom returns assignment details for every occupant of a room.
func (r *AssignmentRepository) ListByRoom(ctx context.Context, roomID string) ([]models.AssignmentDetail, error) {
	const query = `SELECT sr.student_id, sr.room_id, sr.assigned_at, sr.updated_at,
			u.full_name AS student_name, u.email AS student_email,
			rm.name AS room_name, rm.capacity AS room_capacity
		FROM student_rooms sr
		INNER JOIN users u ON u.id = sr.student_id
		INNER JOIN rooms rm ON rm.id = sr.room_id
		WHERE sr.room_id = $1
		ORDER BY u.full_name ASC`
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, roomID); err != nil {
		return nil, fmt.Errorf("list assignments by room: %w", err)
	}
	return details, nil
}

// Assign inserts an assignment after checking capacity inside a single
// transaction. The room row is locked so concurrent assignments to the
// same room serialize, which keeps the occupant count consistent with
// the capacity check. Returns ErrRoomFull when the room is at capacity
// and ErrAlreadyAssigned when the student already holds an assignment.
func (r *AssignmentRepository) Assign(ctx context.Context, studentID, roomID string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assign tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var capacity int
	if err = tx.GetContext(ctx, &capacity, `SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`, roomID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock room: %w", err)
	}

	var occupants int
	if err = tx.GetContext(ctx, &occupants, `SELECT COUNT(*) FROM student_rooms WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("count occupants: %w", err)
	}
	if occupants >= capacity {
		err = ErrRoomFull
		return err
	}

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO student_rooms (student_id, room_id, assigned_at, updated_at) VALUES ($1, $2, $3, $4)`,
		studentID, roomID, now, now); err != nil {
		if isUniqueViolation(err) {
			err = ErrAlreadyAssigned
			return err
		}
		return fmt.Errorf("insert assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit assign tx: %w", err)
	}
	return nil
}
