package repository

import (
	"context"
	"fmt"

	"github.com/drovers/stockyard/internal/domain"
	"github.com/jmoiron/sqlx"
)

// AuditRepository appends admin-action rows. The log is write-once; the
// admin console reads it, nothing ever updates it.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends an audit entry. When tx is non-nil the entry commits with
// the mutation it describes.
func (r *AuditRepository) Create(ctx context.Context, tx *sqlx.Tx, e *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, detail, created_at)
		VALUES (:id, :actor_id, :action, :entity_type, :entity_id, :detail, :created_at)`
	var err error
	if tx != nil {
		_, err = tx.NamedExecContext(ctx, query, e)
	} else {
		_, err = r.db.NamedExecContext(ctx, query, e)
	}
	if err != nil {
		return fmt.Errorf("audit_repo.Create: %w", err)
	}
	return nil
}

// ListRecent returns the latest audit entries for the admin console.
func (r *AuditRepository) ListRecent(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
	var entries []*domain.AuditEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM audit_log ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit_repo.ListRecent: %w", err)
	}
	return entries, nil
}
