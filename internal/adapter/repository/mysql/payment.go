package mysql

import (
	"context"
	"time"

	"registrar-workflow/internal/domain/apperr"
	paymentDomain "registrar-workflow/internal/domain/payment"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).Where("payment_reference_number = ?", reference).First(&out)
	return &out, res.Error
}

func (r *PaymentRepository) GetByReferenceForUpdate(ctx context.Context, reference string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_reference_number = ?", reference).
		First(&out)
	return &out, res.Error
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&out)
	return &out, res.Error
}

func (r *PaymentRepository) ListByRequestID(ctx context.Context, requestID uint64) ([]paymentDomain.Payment, error) {
	var out []paymentDomain.Payment
	res := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *PaymentRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&paymentDomain.Payment{}).
		Where("payment_reference_number = ?", reference).
		Count(&n).Error
	return n > 0, err
}

// MarkPaid only touches the row while it is still pending, so two cashiers
// racing on the same reference cannot both win.
func (r *PaymentRepository) MarkPaid(ctx context.Context, p *paymentDomain.Payment) error {
	res := r.db.WithContext(ctx).
		Model(&paymentDomain.Payment{}).
		Where("id = ? AND status = ?", p.ID, paymentDomain.StatusPending).
		Updates(map[string]any{
			"status":                  paymentDomain.StatusPaid,
			"official_receipt_number": p.OfficialReceiptNumber,
			"cashier_id":              p.CashierID,
			"paid_at":                 p.PaidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ConcurrentModification("payment", p.ReferenceNumber)
	}
	p.Status = paymentDomain.StatusPaid
	return nil
}

func (r *PaymentRepository) FailPending(ctx context.Context, requestID uint64, reason string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&paymentDomain.Payment{}).
		Where("request_id = ? AND status = ?", requestID, paymentDomain.StatusPending).
		Updates(map[string]any{
			"status":         paymentDomain.StatusFailed,
			"failed_at":      at,
			"failure_reason": reason,
		})
	return res.RowsAffected, res.Error
}
