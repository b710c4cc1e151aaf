package request

import (
	"strings"
	"time"

	"registrar-workflow/internal/domain/apperr"
	"registrar-workflow/internal/domain/payment"
	"registrar-workflow/pkg/id"

	"github.com/shopspring/decimal"
)

// Request is a document request tracked through the registrar workflow.
// It is mutated only through the transition functions in workflow.go and is
// never deleted.
type Request struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	RequestID        string          `gorm:"column:request_id;size:32;not null;uniqueIndex" json:"request_id"`
	RequestNumber    string          `gorm:"column:request_number;size:32;not null;uniqueIndex" json:"request_number"`
	RequesterID      string          `gorm:"column:requester_id;size:64;not null;index" json:"requester_id"`
	DocumentType     string          `gorm:"column:document_type;size:128;not null" json:"document_type"`
	Quantity         int             `gorm:"column:quantity;not null" json:"quantity"`
	Purpose          string          `gorm:"column:purpose;type:text" json:"purpose"`
	Amount           decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Status           Status          `gorm:"column:status;size:32;not null;index:idx_requests_status_deadline,priority:1" json:"status"`
	PaymentMethod    *payment.Method `gorm:"column:payment_method;size:16" json:"payment_method,omitempty"`
	PaymentReference *string         `gorm:"column:payment_reference;size:128" json:"payment_reference,omitempty"`
	PaymentDeadline  *time.Time      `gorm:"column:payment_deadline;index:idx_requests_status_deadline,priority:2" json:"payment_deadline,omitempty"`
	PaidAt           *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	ProcessingAt     *time.Time      `gorm:"column:processing_at" json:"processing_at,omitempty"`
	ReadyAt          *time.Time      `gorm:"column:ready_at" json:"ready_at,omitempty"`
	ClaimedAt        *time.Time      `gorm:"column:claimed_at" json:"claimed_at,omitempty"`
	ClaimedByStudent bool            `gorm:"column:claimed_by_student;not null;default:false" json:"claimed_by_student"`
	ClaimNotes       *string         `gorm:"column:claim_notes;type:text" json:"claim_notes,omitempty"`
	ReleasedAt       *time.Time      `gorm:"column:released_at" json:"released_at,omitempty"`
	RejectionReason  *string         `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	CancelledAt      *time.Time      `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	ExpiredAt        *time.Time      `gorm:"column:expired_at" json:"expired_at,omitempty"`
	Version          uint64          `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt        time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Request) TableName() string { return "requests" }

type NewRequestInput struct {
	RequesterID     string
	DocumentType    string
	Quantity        int
	Purpose         string
	Amount          decimal.Decimal
	PaymentDeadline *time.Time
}

// New builds a request in PendingPayment. RequestNumber is assigned by the
// repository once the row has its sequence id.
func New(in NewRequestInput, now time.Time) (*Request, error) {
	switch {
	case strings.TrimSpace(in.RequesterID) == "":
		return nil, apperr.Precondition("requester_id", "is required")
	case strings.TrimSpace(in.DocumentType) == "":
		return nil, apperr.Precondition("document_type", "is required")
	case in.Quantity < 1:
		return nil, apperr.Precondition("quantity", "must be at least 1")
	case in.Amount.IsNegative():
		return nil, apperr.Precondition("amount", "must not be negative")
	case !in.Amount.Equal(in.Amount.Round(2)):
		return nil, apperr.Precondition("amount", "must have at most 2 decimal places")
	}
	if in.PaymentDeadline != nil && !in.PaymentDeadline.After(now) {
		return nil, apperr.Precondition("payment_deadline", "must be in the future")
	}
	return &Request{
		RequestID:       id.NewID32(),
		RequesterID:     strings.TrimSpace(in.RequesterID),
		DocumentType:    strings.TrimSpace(in.DocumentType),
		Quantity:        in.Quantity,
		Purpose:         strings.TrimSpace(in.Purpose),
		Amount:          in.Amount.Round(2),
		Status:          StatusPendingPayment,
		PaymentDeadline: in.PaymentDeadline,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (r *Request) IsFinal() bool          { return r.Status.IsFinal() }
func (r *Request) IsActive() bool         { return r.Status.IsActive() }
func (r *Request) IsPendingPayment() bool { return r.Status == StatusPendingPayment }
func (r *Request) IsPaid() bool           { return r.Status == StatusPaid }
func (r *Request) IsReadyForClaim() bool  { return r.Status == StatusReadyForClaim }
func (r *Request) IsClaimed() bool        { return r.Status == StatusClaimed }
func (r *Request) IsReleased() bool       { return r.Status == StatusReleased }

// IsOverdue reports whether a pending request has passed its payment deadline.
func (r *Request) IsOverdue(now time.Time) bool {
	return r.IsPendingPayment() && r.PaymentDeadline != nil && now.After(*r.PaymentDeadline)
}

func (r *Request) CanTransitionTo(target Status) bool { return CanTransitionTo(r.Status, target) }
