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

// DocumentRepository handles persistence of student documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create persists a document record.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.StudentDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentPending
	}
	const query = `INSERT INTO student_documents (id, student_id, document_url, document_type, status, uploaded_at)
		VALUES (:id, :student_id, :document_url, :document_type, :status, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// FindByID returns a document by identifier.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.StudentDocument, error) {
	const query = `SELECT id, student_id, document_url, document_type, status, uploaded_at
		FROM student_documents WHERE id = $1 LIMIT 1`
	var doc models.StudentDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

// ListByStudent returns a student's documents, newest first.
func (r *DocumentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentDocument, error) {
	const query = `SELECT id, student_id, document_url, document_type, status, uploaded_at
		FROM student_documents WHERE student_id = $1 ORDER BY uploaded_at DESC`
	var docs []models.StudentDocument
	if err := r.db.SelectContext(ctx, &docs, query, studentID); err != nil {
		return nil, fmt.Errorf("list documents by student: %w", err)
	}
	return docs, nil
}

// ListAll returns every document enriched with student details,
// optionally filtered by status. Newest first.
func (r *DocumentRepository) ListAll(ctx context.Context, status models.DocumentStatus) ([]models.DocumentDetail, error) {
	query := `SELECT sd.id, sd.student_id, sd.document_url, sd.document_type, sd.status, sd.uploaded_at,
			u.full_name AS student_name, u.email AS student_email
		FROM student_documents sd
		INNER JOIN users u ON u.id = sd.student_id`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE sd.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY sd.uploaded_at DESC`

	var details []models.DocumentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return details, nil
}

// UpdateStatus moves a document to the given status. Returns
// sql.ErrNoRows when no row matched.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE student_documents SET status = $1 WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
