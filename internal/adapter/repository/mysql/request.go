package mysql

import (
	"context"
	"time"

	"registrar-workflow/internal/domain/apperr"
	requestDomain "registrar-workflow/internal/domain/request"
	"registrar-workflow/pkg/id"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

func (r *RequestRepository) Create(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// placeholder keeps the unique index satisfied until the id is known
		req.RequestNumber = req.RequestID
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		req.RequestNumber = id.RequestNumber(req.CreatedAt, req.ID)
		return tx.Model(req).UpdateColumn("request_number", req.RequestNumber).Error
	})
}

func (r *RequestRepository) GetByID(ctx context.Context, numericID uint64) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := r.db.WithContext(ctx).Where("id = ?", numericID).First(&out)
	return &out, res.Error
}

func (r *RequestRepository) GetByRequestID(ctx context.Context, requestID string) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out)
	return &out, res.Error
}

func (r *RequestRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&out)
	return &out, res.Error
}

func (r *RequestRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]requestDomain.Request, error) {
	var out []requestDomain.Request
	q := r.db.WithContext(ctx).
		Where("status = ? AND payment_deadline IS NOT NULL AND payment_deadline < ?", requestDomain.StatusPendingPayment, now).
		Order("payment_deadline ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	res := q.Find(&out)
	return out, res.Error
}

// Save is a compare-and-swap on version.
func (r *RequestRepository) Save(ctx context.Context, req *requestDomain.Request) error {
	res := r.db.WithContext(ctx).
		Model(&requestDomain.Request{}).
		Where("id = ? AND version = ?", req.ID, req.Version).
		Updates(map[string]any{
			"status":             req.Status,
			"payment_method":     req.PaymentMethod,
			"payment_reference":  req.PaymentReference,
			"payment_deadline":   req.PaymentDeadline,
			"paid_at":            req.PaidAt,
			"processing_at":      req.ProcessingAt,
			"ready_at":           req.ReadyAt,
			"claimed_at":         req.ClaimedAt,
			"claimed_by_student": req.ClaimedByStudent,
			"claim_notes":        req.ClaimNotes,
			"released_at":        req.ReleasedAt,
			"rejection_reason":   req.RejectionReason,
			"cancelled_at":       req.CancelledAt,
			"expired_at":         req.ExpiredAt,
			"version":            req.Version + 1,
			"updated_at":         req.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ConcurrentModification("request", req.RequestID)
	}
	req.Version++
	return nil
}
