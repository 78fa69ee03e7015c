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

// RoomChangeRepository handles persistence of room change requests.
type RoomChangeRepository struct {
	db *sqlx.DB
}

// NewRoomChangeRepository constructs the repository.
func NewRoomChangeRepository(db *sqlx.DB) *RoomChangeRepository {
	return &RoomChangeRepository{db: db}
}

// Create persists a new pending request. The insert itself guards the
// one-pending-per-student rule: rows only land when no pending request
// for the student exists, so two racing submits cannot both commit.
// Returns ErrDuplicatePending when the guard swallows the insert.
func (r *RoomChangeRepository) Create(ctx context.Context, req *models.RoomChangeRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = models.RoomChangePending
	}
	const query = `INSERT INTO room_change_requests
		(id, student_id, reason, current_room, desired_room, status, alternate_room, created_at, updated_at)
		SELECT :id, :student_id, :reason, :current_room, :desired_room, :status, :alternate_room, :created_at, :updated_at
		WHERE NOT EXISTS (
			SELECT 1 FROM room_change_requests
			WHERE student_id = :student_id AND status = :status
		)`
	res, err := r.db.NamedExecContext(ctx, query, req)
	if err != nil {
		return fmt.Errorf("create room change request: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create room change request: %w", err)
	}
	if inserted == 0 {
		return ErrDuplicatePending
	}
	return nil
}

// FindByID returns a request by identifier.
func (r *RoomChangeRepository) FindByID(ctx context.Context, id string) (*models.RoomChangeRequest, error) {
	const query = `SELECT id, student_id, reason, current_room, desired_room, status,
			alternate_room, created_at, updated_at, decided_at
		FROM room_change_requests WHERE id = $1 LIMIT 1`
	var req models.RoomChangeRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find room change request: %w", err)
	}
	return &req, nil
}

// List returns requests enriched with student and room details,
// optionally filtered by status. Newest first.
func (r *RoomChangeRepository) List(ctx context.Context, status models.RoomChangeStatus) ([]models.RoomChangeDetail, error) {
	query := `SELECT rc.id, rc.student_id, rc.reason, rc.current_room, rc.desired_room,
			rc.status, rc.alternate_room, rc.created_at, rc.updated_at, rc.decided_at,
			u.full_name AS student_name, u.email AS student_email
		FROM room_change_requests rc
		INNER JOIN users u ON u.id = rc.student_id`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE rc.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY rc.created_at DESC`

	var details []models.RoomChangeDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list room change requests: %w", err)
	}
	return details, nil
}

// ListByStudent returns a student's own requests, newest first.
func (r *RoomChangeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.RoomChangeRequest, error) {
	const query = `SELECT id, student_id, reason, current_room, desired_room, status,
			alternate_room, created_at, updated_at, decided_at
		FROM room_change_requests WHERE student_id = $1
		ORDER BY created_at DESC`
	var reqs []models.RoomChangeRequest
	if err := r.db.SelectContext(ctx, &reqs, query, studentID); err != nil {
		return nil, fmt.Errorf("list room change requests by student: %w", err)
	}
	return reqs, nil
}

// Approve moves a pending request to Approved and reassigns the student
// to the target room, all in one transaction. The target room row is
// locked for the capacity check so approvals racing with fresh
// assignments serialize. Returns ErrRoomFull when the target room is at
// capacity, ErrNoActiveAssignment when the student has no current
// assignment to move, and ErrRequestNotPending when the request was
// already decided.
func (r *RoomChangeRepository) Approve(ctx context.Context, requestID, studentID, targetRoomID string, alternateRoom *string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var capacity int
	if err = tx.GetContext(ctx, &capacity, `SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE`, targetRoomID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock target room: %w", err)
	}

	var occupants int
	if err = tx.GetContext(ctx, &occupants,
		`SELECT COUNT(*) FROM student_rooms WHERE room_id = $1 AND student_id <> $2`,
		targetRoomID, studentID); err != nil {
		return fmt.Errorf("count occupants: %w", err)
	}
	if occupants >= capacity {
		err = ErrRoomFull
		return err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE student_rooms SET room_id = $1, updated_at = $2 WHERE student_id = $3`,
		targetRoomID, now, studentID)
	if err != nil {
		return fmt.Errorf("reassign student: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reassign student: %w", err)
	}
	if moved == 0 {
		err = ErrNoActiveAssignment
		return err
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE room_change_requests
			SET status = $1, alternate_room = $2, updated_at = $3, decided_at = $3
			WHERE id = $4 AND status = $5`,
		models.RoomChangeApproved, alternateRoom, now, requestID, models.RoomChangePending)
	if err != nil {
		return fmt.Errorf("approve request: %w", err)
	}
	decided, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve request: %w", err)
	}
	if decided == 0 {
		err = ErrRequestNotPending
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit approve tx: %w", err)
	}
	return nil
}

// Reject moves a pending request to Rejected. Returns
// ErrRequestNotPending when the request was already decided.
func (r *RoomChangeRepository) Reject(ctx context.Context, requestID string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE room_change_requests
			SET status = $1, updated_at = $2, decided_at = $2
			WHERE id = $3 AND status = $4`,
		models.RoomChangeRejected, now, requestID, models.RoomChangePending)
	if err != nil {
		return fmt.Errorf("reject request: %w", err)
	}
	decided, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reject request: %w", err)
	}
	if decided == 0 {
		return ErrRequestNotPending
	}
	return nil
}
