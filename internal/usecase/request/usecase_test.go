package request

import (
	"context"
	"sync"
	"testing"
	"time"

	"registrar-workflow/internal/adapter/repository/mysql"
	"registrar-workflow/internal/domain/apperr"
	"registrar-workflow/internal/domain/event"
	"registrar-workflow/internal/domain/payment"
	domain "registrar-workflow/internal/domain/request"
	"registrar-workflow/internal/domain/uow"
	"registrar-workflow/internal/testutil/sqlitedb"
	"registrar-workflow/internal/usecase/transition"
	"registrar-workflow/pkg/clock"
	"registrar-workflow/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC)

const (
	student = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	staff   = "staff-0001"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *capturePublisher) Publish(_ context.Context, ev event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	db  *gorm.DB
	uc  *Usecase
	clk *clock.Fixed
	pub *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := sqlitedb.Open(t)
	clk := clock.NewFixed(t0)
	pub := &capturePublisher{}
	uc := NewUsecase(mysql.NewRequestRepository(db), mysql.NewAuditRepository(db), mysql.NewGormUoW(db),
		transition.NewEmitter(pub, nil), clk)
	uc.PaymentWindow = 72 * time.Hour
	return &fixture{db: db, uc: uc, clk: clk, pub: pub}
}

func (f *fixture) create(t *testing.T) *RequestDTO {
	t.Helper()
	dto, err := f.uc.Create(context.Background(), CreateRequestInput{
		RequesterID:  student,
		DocumentType: "Transcript of Records",
		Quantity:     1,
		Purpose:      "Employment",
		Amount:       decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)
	return dto
}

// markPaid drives the request to Paid the way the payment usecase does.
func (f *fixture) markPaid(t *testing.T, requestID string) {
	t.Helper()
	err := mysql.NewGormUoW(f.db).WithinRequestTx(context.Background(), requestID, func(repos uow.Repos, r *domain.Request) error {
		e, err := domain.MarkAsPaid(r, payment.MethodDigital, "PAY123", "gateway", f.clk.Now())
		if err != nil {
			return err
		}
		return transition.Commit(context.Background(), repos, r, e)
	})
	require.NoError(t, err)
}

func (f *fixture) status(t *testing.T, requestID string) domain.Status {
	t.Helper()
	dto, err := f.uc.Get(context.Background(), requestID)
	require.NoError(t, err)
	return domain.Status(dto.Status)
}

func TestCreate_AssignsNumberAndDeadline(t *testing.T) {
	f := newFixture(t)
	dto := f.create(t)

	assert.Len(t, dto.RequestID, 32)
	assert.Regexp(t, `^REQ-2025-\d{6}$`, dto.RequestNumber)
	assert.Equal(t, "pending_payment", dto.Status)
	assert.Equal(t, "Pending Payment", dto.StatusLabel)
	assert.Equal(t, "100.00", dto.Amount)
	require.NotNil(t, dto.PaymentDeadline)
	assert.True(t, dto.PaymentDeadline.Equal(t0.Add(72*time.Hour)))
	assert.Empty(t, f.pub.events, "creation is not a transition")
}

func TestCreate_InvalidInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), CreateRequestInput{RequesterID: student, Quantity: 1})
	require.ErrorIs(t, err, apperr.ErrPreconditionFailed)
	assert.Equal(t, "document_type", apperr.FieldOf(err))
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Get(context.Background(), id.NewID32())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.uc.AuditTrail(context.Background(), id.NewID32())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.uc.StartProcessing(context.Background(), id.NewID32(), staff)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStaffFlow_WithAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.create(t)
	f.markPaid(t, req.RequestID)

	f.clk.Advance(time.Hour)
	dto, err := f.uc.StartProcessing(ctx, req.RequestID, staff)
	require.NoError(t, err)
	assert.Equal(t, "processing", dto.Status)

	f.clk.Advance(time.Hour)
	dto, err = f.uc.MarkReady(ctx, req.RequestID, staff)
	require.NoError(t, err)
	assert.Equal(t, "ready_for_claim", dto.Status)
	assert.Equal(t, uint64(4), dto.Version)

	_, err = f.uc.Release(ctx, req.RequestID, staff)
	require.ErrorIs(t, err, apperr.ErrIllegalTransition, "release needs a claim first")

	trail, err := f.uc.AuditTrail(ctx, req.RequestID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, "paid", trail[0].ToStatus)
	assert.Equal(t, "processing", trail[1].ToStatus)
	assert.Equal(t, "ready_for_claim", trail[2].ToStatus)
	assert.Equal(t, staff, trail[2].ActorID)
	assert.True(t, trail[1].OccurredAt.Before(trail[2].OccurredAt))

	require.Len(t, f.pub.events, 2)
	assert.Equal(t, event.Type("request.ready_for_claim"), f.pub.events[1].Type)
}

func TestReject_FailureIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.create(t)
	f.markPaid(t, req.RequestID)
	_, err := f.uc.StartProcessing(ctx, req.RequestID, staff)
	require.NoError(t, err)

	before, err := f.uc.Get(ctx, req.RequestID)
	require.NoError(t, err)
	trailBefore, _ := f.uc.AuditTrail(ctx, req.RequestID)

	_, err = f.uc.Reject(ctx, req.RequestID, "  ", staff)
	require.ErrorIs(t, err, apperr.ErrPreconditionFailed)
	assert.Equal(t, "reason", apperr.FieldOf(err))

	after, _ := f.uc.Get(ctx, req.RequestID)
	trailAfter, _ := f.uc.AuditTrail(ctx, req.RequestID)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Version, after.Version)
	assert.Empty(t, after.RejectionReason)
	assert.Len(t, trailAfter, len(trailBefore))

	dto, err := f.uc.Reject(ctx, req.RequestID, "Missing required documents", staff)
	require.NoError(t, err)
	assert.Equal(t, "rejected", dto.Status)
	assert.Equal(t, "Missing required documents", dto.RejectionReason)
}

func TestCancel_FailsPendingPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.create(t)

	reqRow, err := mysql.NewRequestRepository(f.db).GetByRequestID(ctx, req.RequestID)
	require.NoError(t, err)
	payments := mysql.NewPaymentRepository(f.db)
	p := &payment.Payment{
		RequestID:       reqRow.ID,
		Amount:          reqRow.Amount,
		Method:          payment.MethodCash,
		Status:          payment.StatusPending,
		ReferenceNumber: id.NewPaymentReference(t0),
	}
	require.NoError(t, payments.Create(ctx, p))

	dto, err := f.uc.Cancel(ctx, req.RequestID, "no longer needed", student)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", dto.Status)
	assert.NotNil(t, dto.CancelledAt)

	got, err := payments.GetByReference(ctx, p.ReferenceNumber)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, got.Status)
	assert.Equal(t, payment.ReasonCancelled, *got.FailureReason)

	_, err = f.uc.Cancel(ctx, req.RequestID, "", student)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition, "cancelled is final")
}

func TestCancel_ConcurrentCallsSucceedOnce(t *testing.T) {
	f := newFixture(t)
	req := f.create(t)

	const workers = 4
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Cancel(context.Background(), req.RequestID, "", staff)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				success++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	for _, err := range errs {
		kind := apperr.KindOf(err)
		assert.Contains(t, []apperr.Kind{apperr.KindIllegalTransition, apperr.KindConcurrentModification}, kind, err.Error())
	}

	trail, err := f.uc.AuditTrail(context.Background(), req.RequestID)
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

func TestExpireOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.create(t)
	b := f.create(t)
	paid := f.create(t)
	f.markPaid(t, paid.RequestID)

	f.clk.Advance(24 * time.Hour)
	late := f.create(t)

	n, err := f.uc.ExpireOverdue(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is overdue yet")

	f.clk.Advance(48*time.Hour + time.Minute)
	n, err = f.uc.ExpireOverdue(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, domain.StatusPaymentExpired, f.status(t, a.RequestID))
	assert.Equal(t, domain.StatusPaymentExpired, f.status(t, b.RequestID))
	assert.Equal(t, domain.StatusPaid, f.status(t, paid.RequestID))
	assert.Equal(t, domain.StatusPendingPayment, f.status(t, late.RequestID))

	trail, err := f.uc.AuditTrail(ctx, a.RequestID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, SystemActor, trail[0].ActorID)

	n, err = f.uc.ExpireOverdue(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n, "expired requests are not listed again")

	_, err = f.uc.Cancel(ctx, a.RequestID, "", staff)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition, "payment_expired has no outgoing edges")
}
