package mysql

import (
	"context"

	auditDomain "registrar-workflow/internal/domain/audit"

	"gorm.io/gorm"
)

// AuditRepository only appends and lists.
type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Append(ctx context.Context, e *auditDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListByRequestID(ctx context.Context, requestID uint64) ([]auditDomain.Entry, error) {
	var out []auditDomain.Entry
	res := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("occurred_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
