package paymentmock

import (
	"context"
	"time"

	domain "registrar-workflow/internal/domain/payment"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                  func(ctx context.Context, p *domain.Payment) error
	GetByReferenceFn          func(ctx context.Context, reference string) (*domain.Payment, error)
	GetByReferenceForUpdateFn func(ctx context.Context, reference string) (*domain.Payment, error)
	GetByTransactionIDFn      func(ctx context.Context, transactionID string) (*domain.Payment, error)
	ListByRequestIDFn         func(ctx context.Context, requestID uint64) ([]domain.Payment, error)
	ReferenceExistsFn         func(ctx context.Context, reference string) (bool, error)
	MarkPaidFn                func(ctx context.Context, p *domain.Payment) error
	FailPendingFn             func(ctx context.Context, requestID uint64, reason string, at time.Time) (int64, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Payment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	if m.GetByReferenceFn != nil {
		return m.GetByReferenceFn(ctx, reference)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByReferenceForUpdate(ctx context.Context, reference string) (*domain.Payment, error) {
	if m.GetByReferenceForUpdateFn != nil {
		return m.GetByReferenceForUpdateFn(ctx, reference)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	if m.GetByTransactionIDFn != nil {
		return m.GetByTransactionIDFn(ctx, transactionID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByRequestID(ctx context.Context, requestID uint64) ([]domain.Payment, error) {
	if m.ListByRequestIDFn != nil {
		return m.ListByRequestIDFn(ctx, requestID)
	}
	return nil, context.Canceled
}

func (m *Repo) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	if m.ReferenceExistsFn != nil {
		return m.ReferenceExistsFn(ctx, reference)
	}
	return false, nil
}

func (m *Repo) MarkPaid(ctx context.Context, p *domain.Payment) error {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(ctx, p)
	}
	p.Status = domain.StatusPaid
	return nil
}

func (m *Repo) FailPending(ctx context.Context, requestID uint64, reason string, at time.Time) (int64, error) {
	if m.FailPendingFn != nil {
		return m.FailPendingFn(ctx, requestID, reason, at)
	}
	return 0, nil
}
