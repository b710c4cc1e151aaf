package audit

import "context"

// Repository is append-only: there is no update or delete.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	// ListByRequestID returns entries oldest first.
	ListByRequestID(ctx context.Context, requestID uint64) ([]Entry, error)
}
