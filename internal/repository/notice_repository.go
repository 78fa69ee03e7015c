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

// NoticeRepository handles persistence of notices.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository constructs the repository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// Create persists a notice.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notices (id, title, content, target_roles, document_urls, created_by, created_at)
		VALUES (:id, :title, :content, :target_roles, :document_urls, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// FindByID returns a notice by identifier.
func (r *NoticeRepository) FindByID(ctx context.Context, id string) (*models.Notice, error) {
	const query = `SELECT id, title, content, target_roles, document_urls, created_by, created_at
		FROM notices WHERE id = $1 LIMIT 1`
	var notice models.Notice
	if err := r.db.GetContext(ctx, &notice, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notice: %w", err)
	}
	return &notice, nil
}

// ListByRole returns notices targeted at the given role, newest first.
func (r *NoticeRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.Notice, error) {
	const query = `SELECT id, title, content, target_roles, document_urls, created_by, created_at
		FROM notices WHERE $1 = ANY(target_roles)
		ORDER BY created_at DESC`
	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, string(role)); err != nil {
		return nil, fmt.Errorf("list notices by role: %w", err)
	}
	return notices, nil
}

// ListAll returns every notice, newest first.
func (r *NoticeRepository) ListAll(ctx context.Context) ([]models.Notice, error) {
	const query = `SELECT id, title, content, target_roles, document_urls, created_by, created_at
		FROM notices ORDER BY created_at DESC`
	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

// Delete removes a notice. Returns sql.ErrNoRows when no row matched.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
