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

// ComplaintRepository handles persistence of mess complaints.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs the repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create persists a complaint.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.MessComplaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO mess_complaints (id, complaint_number, student_id, complaint, created_at)
		VALUES (:id, :complaint_number, :student_id, :complaint, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// FindByID returns a complaint by identifier.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.MessComplaint, error) {
	const query = `SELECT id, complaint_number, student_id, complaint, created_at
		FROM mess_complaints WHERE id = $1 LIMIT 1`
	var complaint models.MessComplaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint: %w", err)
	}
	return &complaint, nil
}

// ListByStudent returns a student's complaints, newest first.
func (r *ComplaintRepository) ListByStudent(ctx context.Context, studentID string) ([]models.MessComplaint, error) {
	const query = `SELECT id, complaint_number, student_id, complaint, created_at
		FROM mess_complaints WHERE student_id = $1 ORDER BY created_at DESC`
	var complaints []models.MessComplaint
	if err := r.db.SelectContext(ctx, &complaints, query, studentID); err != nil {
		return nil, fmt.Errorf("list complaints by student: %w", err)
	}
	return complaints, nil
}

// ListAll returns every complaint enriched with student details,
// newest first.
func (r *ComplaintRepository) ListAll(ctx context.Context) ([]models.ComplaintDetail, error) {
	const query = `SELECT mc.id, mc.complaint_number, mc.student_id, mc.complaint, mc.created_at,
			u.full_name AS student_name, u.email AS student_email
		FROM mess_complaints mc
		INNER JOIN users u ON u.id = mc.student_id
		ORDER BY mc.created_at DESC`
	var details []models.ComplaintDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return details, nil
}
