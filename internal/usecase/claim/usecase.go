package claim

import (
	"context"
	"strings"

	"registrar-workflow/internal/domain/apperr"
	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/domain/request"
	"registrar-workflow/internal/domain/uow"
	"registrar-workflow/internal/infrastructure/observability"
	requestUC "registrar-workflow/internal/usecase/request"
	"registrar-workflow/internal/usecase/transition"
	"registrar-workflow/pkg/clock"

	"go.opentelemetry.io/otel/attribute"
)

type ClaimInput struct {
	RequestID   string `json:"-"`
	RequesterID string `json:"-"`
	Confirmed   bool   `json:"confirmed"`
	Notes       string `json:"notes"`
}

// ErrNotReady is returned when the document is not yet ready for pickup.
var ErrNotReady = apperr.Precondition("claim", "request is not ready for claim")

type Usecase struct {
	uow   uow.UnitOfWork
	emit  *transition.Emitter
	clock clock.Clock
}

func NewUsecase(tx uow.UnitOfWork, emit *transition.Emitter, clk clock.Clock) *Usecase {
	if clk == nil {
		clk = clock.Real{}
	}
	if emit == nil {
		emit = transition.NewEmitter(nil, nil)
	}
	return &Usecase{uow: tx, emit: emit, clock: clk}
}

// ConfirmClaim is the requester's acknowledgement that the document was
// picked up. Checks run in order: ownership, readiness, confirmation.
func (u *Usecase) ConfirmClaim(ctx context.Context, in ClaimInput) (dto *requestUC.RequestDTO, err error) {
	ctx, sp := observability.StartSpan(ctx, "claim", "ConfirmClaim", attribute.String("request_id", in.RequestID))
	defer func() { sp.End(err) }()

	var (
		entry *audit.Entry
		saved *request.Request
	)
	err = u.uow.WithinRequestTx(ctx, in.RequestID, func(repos uow.Repos, r *request.Request) error {
		requester := strings.TrimSpace(in.RequesterID)
		if requester == "" || requester != r.RequesterID {
			return apperr.Forbidden("only the requester can confirm a claim")
		}
		if !r.IsReadyForClaim() {
			return ErrNotReady
		}
		if !in.Confirmed {
			return apperr.Precondition("confirmation", "must be confirmed")
		}

		e, err := request.MarkAsClaimed(r, requester, in.Notes, u.clock.Now())
		if err != nil {
			return err
		}
		if err := transition.Commit(ctx, repos, r, e); err != nil {
			return err
		}
		entry, saved = e, r
		return nil
	})
	if err != nil {
		return nil, u.emit.Fail(ctx, "ConfirmClaim", transition.Classify(err, "request", in.RequestID))
	}

	u.emit.Emit(ctx, saved, entry)
	return requestUC.ToDTO(saved), nil
}
