package request

import (
	"context"
	"errors"
	"time"

	"registrar-workflow/internal/domain/apperr"
	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/domain/payment"
	domain "registrar-workflow/internal/domain/request"
	"registrar-workflow/internal/domain/uow"
	"registrar-workflow/internal/infrastructure/observability"
	"registrar-workflow/internal/usecase/transition"
	"registrar-workflow/pkg/clock"

	"go.opentelemetry.io/otel/attribute"
)

// SystemActor is recorded on transitions the scheduler drives.
const SystemActor = "system"

type Usecase struct {
	requests domain.Repository
	audits   audit.Repository
	uow      uow.UnitOfWork
	emit     *transition.Emitter
	clock    clock.Clock

	// PaymentWindow sets the payment deadline of new requests; zero means none.
	PaymentWindow time.Duration
}

func NewUsecase(requests domain.Repository, audits audit.Repository, tx uow.UnitOfWork, emit *transition.Emitter, clk clock.Clock) *Usecase {
	if clk == nil {
		clk = clock.Real{}
	}
	if emit == nil {
		emit = transition.NewEmitter(nil, nil)
	}
	return &Usecase{requests: requests, audits: audits, uow: tx, emit: emit, clock: clk}
}

func (u *Usecase) Create(ctx context.Context, in CreateRequestInput) (dto *RequestDTO, err error) {
	ctx, sp := observability.StartSpan(ctx, "request", "Create", attribute.String("requester_id", in.RequesterID))
	defer func() { sp.End(err) }()

	now := u.clock.Now()
	var deadline *time.Time
	if u.PaymentWindow > 0 {
		d := now.Add(u.PaymentWindow)
		deadline = &d
	}

	r, err := domain.New(domain.NewRequestInput{
		RequesterID:     in.RequesterID,
		DocumentType:    in.DocumentType,
		Quantity:        in.Quantity,
		Purpose:         in.Purpose,
		Amount:          in.Amount,
		PaymentDeadline: deadline,
	}, now)
	if err != nil {
		return nil, u.emit.Fail(ctx, "Create", err)
	}

	if err := u.uow.WithinTx(ctx, func(repos uow.Repos) error {
		return repos.Requests.Create(ctx, r)
	}); err != nil {
		return nil, u.emit.Fail(ctx, "Create", transition.Classify(err, "request", r.RequestID))
	}

	u.emit.Logger().InfoContext(ctx, "request created",
		"request_id", r.RequestID, "request_number", r.RequestNumber, "requester_id", r.RequesterID)
	return ToDTO(r), nil
}

func (u *Usecase) Get(ctx context.Context, requestID string) (dto *RequestDTO, err error) {
	ctx, sp := observability.StartSpan(ctx, "request", "Get", attribute.String("request_id", requestID))
	defer func() { sp.End(err) }()

	r, err := u.requests.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, transition.Classify(err, "request", requestID)
	}
	return ToDTO(r), nil
}

// AuditTrail lists the request's transitions oldest first.
func (u *Usecase) AuditTrail(ctx context.Context, requestID string) (out []AuditEntryDTO, err error) {
	ctx, sp := observability.StartSpan(ctx, "request", "AuditTrail", attribute.String("request_id", requestID))
	defer func() { sp.End(err) }()

	r, err := u.requests.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, transition.Classify(err, "request", requestID)
	}
	entries, err := u.audits.ListByRequestID(ctx, r.ID)
	if err != nil {
		return nil, transition.Classify(err, "audit trail", requestID)
	}
	out = make([]AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditDTO(e))
	}
	return out, nil
}

func (u *Usecase) StartProcessing(ctx context.Context, requestID, actor string) (*RequestDTO, error) {
	return u.run(ctx, "StartProcessing", requestID, func(r *domain.Request, now time.Time) (*audit.Entry, error) {
		return domain.MarkAsProcessing(r, actor, now)
	}, nil)
}

func (u *Usecase) MarkReady(ctx context.Context, requestID, actor string) (*RequestDTO, error) {
	return u.run(ctx, "MarkReady", requestID, func(r *domain.Request, now time.Time) (*audit.Entry, error) {
		return domain.MarkAsReadyForClaim(r, actor, now)
	}, nil)
}

func (u *Usecase) Release(ctx context.Context, requestID, actor string) (*RequestDTO, error) {
	return u.run(ctx, "Release", requestID, func(r *domain.Request, now time.Time) (*audit.Entry, error) {
		return domain.MarkAsReleased(r, actor, now)
	}, nil)
}

func (u *Usecase) Reject(ctx context.Context, requestID, reason, actor string) (*RequestDTO, error) {
	return u.run(ctx, "Reject", requestID, func(r *domain.Request, now time.Time) (*audit.Entry, error) {
		return domain.Reject(r, reason, actor, now)
	}, nil)
}

// Cancel also fails any payment still pending for the request.
func (u *Usecase) Cancel(ctx context.Context, requestID, reason, actor string) (*RequestDTO, error) {
	return u.run(ctx, "Cancel", requestID, func(r *domain.Request, now time.Time) (*audit.Entry, error) {
		return domain.Cancel(r, reason, actor, now)
	}, func(ctx context.Context, repos uow.Repos, r *domain.Request, now time.Time) error {
		_, err := repos.Payments.FailPending(ctx, r.ID, payment.ReasonCancelled, now)
		return err
	})
}

type stepFn func(r *domain.Request, now time.Time) (*audit.Entry, error)

type afterFn func(ctx context.Context, repos uow.Repos, r *domain.Request, now time.Time) error

// run locks the request, applies step, runs after in the same transaction,
// and reports the transition once it has committed.
func (u *Usecase) run(ctx context.Context, op, requestID string, step stepFn, after afterFn) (dto *RequestDTO, err error) {
	ctx, sp := observability.StartSpan(ctx, "request", op, attribute.String("request_id", requestID))
	defer func() { sp.End(err) }()

	var (
		entry *audit.Entry
		saved *domain.Request
	)
	err = u.uow.WithinRequestTx(ctx, requestID, func(repos uow.Repos, r *domain.Request) error {
		now := u.clock.Now()
		e, err := step(r, now)
		if err != nil {
			return err
		}
		if after != nil {
			if err := after(ctx, repos, r, now); err != nil {
				return err
			}
		}
		if err := transition.Commit(ctx, repos, r, e); err != nil {
			return err
		}
		entry, saved = e, r
		return nil
	})
	if err != nil {
		return nil, u.emit.Fail(ctx, op, transition.Classify(err, "request", requestID))
	}

	u.emit.Emit(ctx, saved, entry)
	return ToDTO(saved), nil
}

// ExpireOverdue moves up to limit overdue PendingPayment requests to
// PaymentExpired, one transaction each. Requests that were paid or cancelled
// since the listing are skipped. It returns how many were expired.
func (u *Usecase) ExpireOverdue(ctx context.Context, limit int) (expired int, err error) {
	ctx, sp := observability.StartSpan(ctx, "request", "ExpireOverdue", attribute.Int("limit", limit))
	defer func() {
		sp.SetAttributes(attribute.Int("expired", expired))
		sp.End(err)
	}()

	overdue, err := u.requests.ListOverdue(ctx, u.clock.Now(), limit)
	if err != nil {
		return 0, transition.Classify(err, "overdue requests", "")
	}

	var errs []error
	for _, r := range overdue {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		_, runErr := u.run(ctx, "Expire", r.RequestID, func(r *domain.Request, now time.Time) (*audit.Entry, error) {
			return domain.Expire(r, SystemActor, now)
		}, func(ctx context.Context, repos uow.Repos, r *domain.Request, now time.Time) error {
			_, err := repos.Payments.FailPending(ctx, r.ID, payment.ReasonExpired, now)
			return err
		})
		switch {
		case runErr == nil:
			expired++
		case errors.Is(runErr, apperr.ErrIllegalTransition), errors.Is(runErr, apperr.ErrPreconditionFailed),
			errors.Is(runErr, apperr.ErrConcurrentModification), errors.Is(runErr, apperr.ErrNotFound):
			u.emit.Logger().InfoContext(ctx, "skipped expiry", "request_id", r.RequestID, "error", runErr.Error())
		default:
			errs = append(errs, runErr)
		}
	}

	observability.RecordExpired(expired)
	return expired, errors.Join(errs...)
}
