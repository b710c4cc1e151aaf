package requestmock

import (
	"context"
	"time"

	domain "registrar-workflow/internal/domain/request"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset functions return context.Canceled so a missing stub fails loudly.
type Repo struct {
	CreateFn                  func(ctx context.Context, r *domain.Request) error
	GetByIDFn                 func(ctx context.Context, id uint64) (*domain.Request, error)
	GetByRequestIDFn          func(ctx context.Context, requestID string) (*domain.Request, error)
	GetByRequestIDForUpdateFn func(ctx context.Context, requestID string) (*domain.Request, error)
	ListOverdueFn             func(ctx context.Context, now time.Time, limit int) ([]domain.Request, error)
	SaveFn                    func(ctx context.Context, r *domain.Request) error

	Saved []domain.Request
}

func (m *Repo) Create(ctx context.Context, r *domain.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Request, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByRequestID(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDForUpdateFn != nil {
		return m.GetByRequestIDForUpdateFn(ctx, requestID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Request, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, now, limit)
	}
	return nil, context.Canceled
}

// Save records a copy of every saved request before delegating.
func (m *Repo) Save(ctx context.Context, r *domain.Request) error {
	m.Saved = append(m.Saved, *r)
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}
