package uow

import (
	"context"

	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/domain/payment"
	"registrar-workflow/internal/domain/request"
)

// Repos are bound to the transaction of the unit of work.
type Repos struct {
	Requests request.Repository
	Payments payment.Repository
	Audits   audit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the request row first, then pass it in; the request aggregate is
	// the unit of mutation
	WithinRequestTx(ctx context.Context, requestID string, fn func(r Repos, req *request.Request) error) error
}
