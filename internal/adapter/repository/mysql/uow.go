package mysql

import (
	"context"

	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/domain/payment"
	"registrar-workflow/internal/domain/request"
	"registrar-workflow/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Requests: &RequestRepository{db: tx},
		Payments: &PaymentRepository{db: tx},
		Audits:   &AuditRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, req *request.Request) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the request row up-front to serialize transitions
		req, err := r.Requests.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(r, req)
	})
}

// Models lists the tables owned by this adapter, for migrations.
func Models() []any {
	return []any{&request.Request{}, &payment.Payment{}, &audit.Entry{}}
}
