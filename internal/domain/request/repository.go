package request

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts r and assigns its RequestNumber from the row id.
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uint64) (*Request, error)
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	GetByRequestIDForUpdate(ctx context.Context, requestID string) (*Request, error)
	// ListOverdue returns pending requests whose payment deadline is before now.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]Request, error)
	// Save writes r if its Version still matches the stored row and bumps
	// Version; otherwise it returns a concurrent modification error.
	Save(ctx context.Context, r *Request) error
}
