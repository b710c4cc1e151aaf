package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"registrar-workflow/internal/domain/apperr"
	"registrar-workflow/internal/domain/audit"
	domain "registrar-workflow/internal/domain/payment"
	"registrar-workflow/internal/domain/request"
	"registrar-workflow/internal/domain/uow"
	"registrar-workflow/internal/infrastructure/observability"
	"registrar-workflow/internal/usecase/transition"
	"registrar-workflow/pkg/clock"
	"registrar-workflow/pkg/id"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// GatewayActor is recorded on transitions reported by the payment gateway.
const GatewayActor = "payment-gateway"

const maxReferenceAttempts = 5

var errAlreadyProcessed = &apperr.Error{Kind: apperr.KindNotFound, Message: "payment already processed"}

type Usecase struct {
	payments domain.Repository
	requests request.Repository
	uow      uow.UnitOfWork
	emit     *transition.Emitter
	clock    clock.Clock

	newReference func(time.Time) string
}

func NewUsecase(payments domain.Repository, requests request.Repository, tx uow.UnitOfWork, emit *transition.Emitter, clk clock.Clock) *Usecase {
	if clk == nil {
		clk = clock.Real{}
	}
	if emit == nil {
		emit = transition.NewEmitter(nil, nil)
	}
	return &Usecase{
		payments:     payments,
		requests:     requests,
		uow:          tx,
		emit:         emit,
		clock:        clk,
		newReference: id.NewPaymentReference,
	}
}

// GenerateCashPayment opens a pending cash payment with a fresh PRN. Earlier
// pending payments of the request are failed as superseded. The request stays
// in PendingPayment.
func (u *Usecase) GenerateCashPayment(ctx context.Context, in GenerateCashInput) (dto *PaymentDTO, err error) {
	ctx, sp := observability.StartSpan(ctx, "payment", "GenerateCashPayment", attribute.String("request_id", in.RequestID))
	defer func() { sp.End(err) }()

	if strings.TrimSpace(in.Actor) == "" {
		return nil, u.emit.Fail(ctx, "GenerateCashPayment", apperr.Precondition("actor", "is required"))
	}

	var created *domain.Payment
	var owner *request.Request
	err = u.uow.WithinRequestTx(ctx, in.RequestID, func(repos uow.Repos, r *request.Request) error {
		if !r.IsPendingPayment() {
			return apperr.Precondition("status", "request is not awaiting payment")
		}
		if !in.Amount.Equal(r.Amount) {
			return apperr.Precondition("amount", fmt.Sprintf("must equal the request amount %s", r.Amount.StringFixed(2)))
		}

		now := u.clock.Now()
		if _, err := repos.Payments.FailPending(ctx, r.ID, domain.ReasonSuperseded, now); err != nil {
			return err
		}
		ref, err := u.uniqueReference(ctx, repos.Payments, now)
		if err != nil {
			return err
		}
		p := &domain.Payment{
			RequestID:       r.ID,
			Amount:          r.Amount,
			Method:          domain.MethodCash,
			Status:          domain.StatusPending,
			ReferenceNumber: ref,
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return err
		}
		created, owner = p, r
		return nil
	})
	if err != nil {
		return nil, u.emit.Fail(ctx, "GenerateCashPayment", transition.Classify(err, "request", in.RequestID))
	}

	u.emit.Logger().InfoContext(ctx, "cash payment generated",
		"request_id", owner.RequestID, "payment_reference_number", created.ReferenceNumber, "actor_id", in.Actor)
	return toDTO(created, owner), nil
}

// uniqueReference draws references until one is unused. The unique index
// still guards the insert.
func (u *Usecase) uniqueReference(ctx context.Context, payments domain.Repository, now time.Time) (string, error) {
	for i := 0; i < maxReferenceAttempts; i++ {
		ref := u.newReference(now)
		exists, err := payments.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", fmt.Errorf("no unused payment reference after %d attempts", maxReferenceAttempts)
}

// LookupByReference is the cashier's lookup; only pending payments are found.
func (u *Usecase) LookupByReference(ctx context.Context, reference string) (dto *PaymentDTO, err error) {
	ctx, sp := observability.StartSpan(ctx, "payment", "LookupByReference", attribute.String("reference", reference))
	defer func() { sp.End(err) }()

	p, r, err := u.load(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !p.IsPending() {
		return nil, errAlreadyProcessed
	}
	return toDTO(p, r), nil
}

// ConfirmCashPayment marks a pending cash payment paid and moves its request
// to Paid in one transaction. Of two cashiers confirming the same reference
// only one succeeds; the other gets NotFound or ConcurrentModification.
func (u *Usecase) ConfirmCashPayment(ctx context.Context, in ConfirmCashInput) (dto *PaymentDTO, err error) {
	ctx, sp := observability.StartSpan(ctx, "payment", "ConfirmCashPayment", attribute.String("reference", in.Reference))
	defer func() { sp.End(err) }()

	orNumber := strings.TrimSpace(in.OfficialReceiptNumber)
	cashier := strings.TrimSpace(in.CashierID)
	switch {
	case orNumber == "":
		return nil, u.emit.Fail(ctx, "ConfirmCashPayment", apperr.Precondition("official_receipt_number", "is required"))
	case cashier == "":
		return nil, u.emit.Fail(ctx, "ConfirmCashPayment", apperr.Precondition("cashier_id", "is required"))
	}

	p, owner, err := u.load(ctx, in.Reference)
	if err != nil {
		return nil, u.emit.Fail(ctx, "ConfirmCashPayment", err)
	}
	if !p.IsPending() {
		return nil, u.emit.Fail(ctx, "ConfirmCashPayment", errAlreadyProcessed)
	}

	var (
		entry *audit.Entry
		paid  *domain.Payment
		saved *request.Request
	)
	err = u.uow.WithinRequestTx(ctx, owner.RequestID, func(repos uow.Repos, r *request.Request) error {
		locked, err := repos.Payments.GetByReferenceForUpdate(ctx, in.Reference)
		if err != nil {
			return err
		}
		if !locked.IsPending() {
			return errAlreadyProcessed
		}
		if locked.Method != domain.MethodCash {
			return apperr.Precondition("method", "only cash payments are confirmed by a cashier")
		}

		now := u.clock.Now()
		e, err := request.MarkAsPaid(r, domain.MethodCash, locked.ReferenceNumber, cashier, now)
		if err != nil {
			return err
		}
		locked.OfficialReceiptNumber = &orNumber
		locked.CashierID = &cashier
		locked.PaidAt = &now
		if err := repos.Payments.MarkPaid(ctx, locked); err != nil {
			return err
		}
		if _, err := repos.Payments.FailPending(ctx, r.ID, domain.ReasonPaidOther, now); err != nil {
			return err
		}
		if err := transition.Commit(ctx, repos, r, e); err != nil {
			return err
		}
		entry, paid, saved = e, locked, r
		return nil
	})
	if err != nil {
		return nil, u.emit.Fail(ctx, "ConfirmCashPayment", transition.Classify(err, "payment", in.Reference))
	}

	observability.RecordPaymentConfirmed(string(domain.MethodCash))
	u.emit.Emit(ctx, saved, entry)
	return toDTO(paid, saved), nil
}

// GetReceipt is only available once the payment is paid.
func (u *Usecase) GetReceipt(ctx context.Context, reference string) (receipt *domain.Receipt, err error) {
	ctx, sp := observability.StartSpan(ctx, "payment", "GetReceipt", attribute.String("reference", reference))
	defer func() { sp.End(err) }()

	p, r, err := u.load(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !p.IsPaid() || p.PaidAt == nil {
		return nil, &apperr.Error{Kind: apperr.KindNotFound, Message: "receipt is not available until the payment is confirmed"}
	}
	receipt = &domain.Receipt{
		ReferenceNumber: p.ReferenceNumber,
		RequestID:       r.RequestID,
		RequestNumber:   r.RequestNumber,
		DocumentType:    r.DocumentType,
		Quantity:        r.Quantity,
		Amount:          p.Amount,
		Method:          p.Method,
		PaidAt:          *p.PaidAt,
	}
	if p.OfficialReceiptNumber != nil {
		receipt.OfficialReceiptNumber = *p.OfficialReceiptNumber
	}
	if p.CashierID != nil {
		receipt.CashierID = *p.CashierID
	}
	return receipt, nil
}

// ConfirmDigitalPayment records a settled gateway payment and moves the
// request to Paid. A repeated transaction id returns the recorded payment.
func (u *Usecase) ConfirmDigitalPayment(ctx context.Context, in DigitalCallbackInput) (dto *PaymentDTO, err error) {
	ctx, sp := observability.StartSpan(ctx, "payment", "ConfirmDigitalPayment",
		attribute.String("request_id", in.RequestID), attribute.String("transaction_id", in.TransactionID))
	defer func() { sp.End(err) }()

	txn := strings.TrimSpace(in.TransactionID)
	if txn == "" {
		return nil, u.emit.Fail(ctx, "ConfirmDigitalPayment", apperr.Precondition("transaction_id", "is required"))
	}

	if prior, err := u.payments.GetByTransactionID(ctx, txn); err == nil {
		r, err := u.requests.GetByID(ctx, prior.RequestID)
		if err != nil {
			return nil, transition.Classify(err, "request", in.RequestID)
		}
		if r.RequestID != in.RequestID {
			return nil, u.emit.Fail(ctx, "ConfirmDigitalPayment",
				apperr.Precondition("transaction_id", "already recorded for another request"))
		}
		return toDTO(prior, r), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, transition.Classify(err, "payment", txn)
	}

	var (
		entry *audit.Entry
		paid  *domain.Payment
		saved *request.Request
	)
	err = u.uow.WithinRequestTx(ctx, in.RequestID, func(repos uow.Repos, r *request.Request) error {
		if !in.Amount.Equal(r.Amount) {
			return apperr.Precondition("amount", fmt.Sprintf("must equal the request amount %s", r.Amount.StringFixed(2)))
		}
		now := u.clock.Now()
		e, err := request.MarkAsPaid(r, domain.MethodDigital, txn, GatewayActor, now)
		if err != nil {
			return err
		}
		if _, err := repos.Payments.FailPending(ctx, r.ID, domain.ReasonPaidOther, now); err != nil {
			return err
		}
		ref, err := u.uniqueReference(ctx, repos.Payments, now)
		if err != nil {
			return err
		}
		p := &domain.Payment{
			RequestID:       r.ID,
			Amount:          r.Amount,
			Method:          domain.MethodDigital,
			Status:          domain.StatusPaid,
			ReferenceNumber: ref,
			TransactionID:   &txn,
			PaidAt:          &now,
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return err
		}
		if err := transition.Commit(ctx, repos, r, e); err != nil {
			return err
		}
		entry, paid, saved = e, p, r
		return nil
	})
	if err != nil {
		return nil, u.emit.Fail(ctx, "ConfirmDigitalPayment", transition.Classify(err, "request", in.RequestID))
	}

	observability.RecordPaymentConfirmed(string(domain.MethodDigital))
	u.emit.Emit(ctx, saved, entry)
	return toDTO(paid, saved), nil
}

// load reads a payment and its request outside any transaction.
func (u *Usecase) load(ctx context.Context, reference string) (*domain.Payment, *request.Request, error) {
	p, err := u.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, nil, transition.Classify(err, "payment", reference)
	}
	r, err := u.requests.GetByID(ctx, p.RequestID)
	if err != nil {
		return nil, nil, transition.Classify(err, "request", reference)
	}
	return p, r, nil
}
