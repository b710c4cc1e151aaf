package request

import (
	"fmt"
	"strings"
	"time"

	"registrar-workflow/internal/domain/apperr"
	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/domain/payment"

	"github.com/google/uuid"
)

// Metadata carries the inputs some transitions need.
type Metadata struct {
	PaymentMethod    payment.Method
	PaymentReference string
	Reason           string
	Notes            string
}

// TransitionTo moves r to target when the edge exists and its guards hold.
// On failure r is left untouched. On success the returned entry is the audit
// record the caller must append in the same unit of work as the save.
func TransitionTo(r *Request, target Status, actor string, meta Metadata, now time.Time) (*audit.Entry, error) {
	from := r.Status
	if !from.Valid() {
		panic(fmt.Sprintf("request %s carries unknown status %q", r.RequestID, from))
	}
	if !CanTransitionTo(from, target) {
		return nil, apperr.IllegalTransition(string(from), string(target))
	}
	if strings.TrimSpace(actor) == "" {
		return nil, apperr.Precondition("actor", "is required")
	}
	if err := checkGuards(r, target, meta, now); err != nil {
		return nil, err
	}

	apply(r, from, target, meta, now)

	return &audit.Entry{
		EntryID:    uuid.NewString(),
		RequestID:  r.ID,
		FromStatus: string(from),
		ToStatus:   string(target),
		ActorID:    actor,
		Reason:     optional(meta.Reason),
		Notes:      optional(meta.Notes),
		OccurredAt: now,
	}, nil
}

func checkGuards(r *Request, target Status, meta Metadata, now time.Time) error {
	switch target {
	case StatusPaid:
		if !meta.PaymentMethod.Valid() {
			return apperr.Precondition("payment_method", "must be cash or digital")
		}
		if strings.TrimSpace(meta.PaymentReference) == "" {
			return apperr.Precondition("payment_reference", "is required")
		}
	case StatusRejected:
		if strings.TrimSpace(meta.Reason) == "" {
			return apperr.Precondition("reason", "a rejection reason is required")
		}
	case StatusPaymentExpired:
		if !r.IsOverdue(now) {
			return apperr.Precondition("payment_deadline", "payment deadline has not passed")
		}
	}
	return nil
}

func apply(r *Request, from, target Status, meta Metadata, now time.Time) {
	at := now
	switch target {
	case StatusPaid:
		m := meta.PaymentMethod
		ref := strings.TrimSpace(meta.PaymentReference)
		r.PaymentMethod = &m
		r.PaymentReference = &ref
		r.PaidAt = &at
	case StatusPaymentExpired:
		r.ExpiredAt = &at
	case StatusProcessing:
		r.ProcessingAt = &at
	case StatusReadyForClaim:
		r.ReadyAt = &at
	case StatusClaimed:
		r.ClaimedAt = &at
		r.ClaimedByStudent = true
		if notes := optional(meta.Notes); notes != nil {
			r.ClaimNotes = notes
		}
	case StatusReleased:
		r.ReleasedAt = &at
	case StatusRejected:
		r.RejectionReason = optional(meta.Reason)
	case StatusCancelled:
		r.CancelledAt = &at
		// claimed_at is only meaningful while claimed or released
		if from == StatusClaimed {
			r.ClaimedAt = nil
			r.ClaimedByStudent = false
		}
	}
	r.Status = target
	r.UpdatedAt = now
}

func MarkAsPaid(r *Request, method payment.Method, reference, actor string, now time.Time) (*audit.Entry, error) {
	return TransitionTo(r, StatusPaid, actor, Metadata{PaymentMethod: method, PaymentReference: reference}, now)
}

func MarkAsProcessing(r *Request, actor string, now time.Time) (*audit.Entry, error) {
	return TransitionTo(r, StatusProcessing, actor, Metadata{}, now)
}

func MarkAsReadyForClaim(r *Request, actor string, now time.Time) (*audit.Entry, error) {
	return TransitionTo(r, StatusReadyForClaim, actor, Metadata{}, now)
}

func MarkAsClaimed(r *Request, actor, notes string, now time.Time) (*audit.Entry, error) {
	return TransitionTo(r, StatusClaimed, actor, Metadata{Notes: notes}, now)
}

func MarkAsReleased(r *Request, actor string, now time.Time) (*audit.Entry, error) {
	return TransitionTo(r, StatusReleased, actor, Metadata{}, now)
}

func Reject(r *Request, reason, actor string, now time.Time) (*audit.Entry, error) {
	return TransitionTo(r, StatusRejected, actor, Metadata{Reason: reason}, now)
}

// Cancel is legal from every active status that has a cancellation edge.
// reason is optional.
func Cancel(r *Request, reason, actor string, now time.Time) (*audit.Entry, error) {
	return TransitionTo(r, StatusCancelled, actor, Metadata{Reason: reason}, now)
}

func Expire(r *Request, actor string, now time.Time) (*audit.Entry, error) {
	return TransitionTo(r, StatusPaymentExpired, actor, Metadata{}, now)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
