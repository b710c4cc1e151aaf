package payment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByReference(ctx context.Context, reference string) (*Payment, error)
	// GetByReferenceForUpdate locks the payment row; only call it after the
	// owning request row is locked.
	GetByReferenceForUpdate(ctx context.Context, reference string) (*Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	ListByRequestID(ctx context.Context, requestID uint64) ([]Payment, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)

	// MarkPaid moves a pending payment to paid. It fails with a concurrent
	// modification error when the row is no longer pending.
	MarkPaid(ctx context.Context, p *Payment) error
	// FailPending invalidates every pending payment of a request.
	FailPending(ctx context.Context, requestID uint64, reason string, at time.Time) (int64, error)
}
