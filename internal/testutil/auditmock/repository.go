package auditmock

import (
	"context"
	"sync"

	domain "registrar-workflow/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo keeps appended entries in memory. AppendFn, when set, can fail the
// append.
type Repo struct {
	AppendFn func(ctx context.Context, e *domain.Entry) error

	mu      sync.Mutex
	Entries []domain.Entry
}

func (m *Repo) Append(ctx context.Context, e *domain.Entry) error {
	if m.AppendFn != nil {
		if err := m.AppendFn(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, *e)
	return nil
}

func (m *Repo) ListByRequestID(_ context.Context, requestID uint64) ([]domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Entry
	for _, e := range m.Entries {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}
