package request

import (
	"time"

	"registrar-workflow/internal/domain/audit"
	domain "registrar-workflow/internal/domain/request"

	"github.com/shopspring/decimal"
)

type CreateRequestInput struct {
	RequesterID  string          `json:"requester_id"`
	DocumentType string          `json:"document_type"`
	Quantity     int             `json:"quantity"`
	Purpose      string          `json:"purpose"`
	Amount       decimal.Decimal `json:"amount"`
}

type RequestDTO struct {
	RequestID        string     `json:"request_id"`
	RequestNumber    string     `json:"request_number"`
	RequesterID      string     `json:"requester_id"`
	DocumentType     string     `json:"document_type"`
	Quantity         int        `json:"quantity"`
	Purpose          string     `json:"purpose,omitempty"`
	Amount           string     `json:"amount"`
	Status           string     `json:"status"`
	StatusLabel      string     `json:"status_label"`
	PaymentMethod    string     `json:"payment_method,omitempty"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	PaymentDeadline  *time.Time `json:"payment_deadline,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	ClaimedAt        *time.Time `json:"claimed_at,omitempty"`
	ClaimedByStudent bool       `json:"claimed_by_student"`
	ClaimNotes       string     `json:"claim_notes,omitempty"`
	ReleasedAt       *time.Time `json:"released_at,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	ExpiredAt        *time.Time `json:"expired_at,omitempty"`
	Version          uint64     `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type AuditEntryDTO struct {
	EntryID    string    `json:"entry_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	Reason     string    `json:"reason,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToDTO is shared with the payment and claim usecases.
func ToDTO(r *domain.Request) *RequestDTO {
	dto := &RequestDTO{
		RequestID:        r.RequestID,
		RequestNumber:    r.RequestNumber,
		RequesterID:      r.RequesterID,
		DocumentType:     r.DocumentType,
		Quantity:         r.Quantity,
		Purpose:          r.Purpose,
		Amount:           r.Amount.StringFixed(2),
		Status:           string(r.Status),
		StatusLabel:      r.Status.Label(),
		PaymentDeadline:  r.PaymentDeadline,
		PaidAt:           r.PaidAt,
		ClaimedAt:        r.ClaimedAt,
		ClaimedByStudent: r.ClaimedByStudent,
		ReleasedAt:       r.ReleasedAt,
		CancelledAt:      r.CancelledAt,
		ExpiredAt:        r.ExpiredAt,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.PaymentMethod != nil {
		dto.PaymentMethod = string(*r.PaymentMethod)
	}
	dto.PaymentReference = deref(r.PaymentReference)
	dto.ClaimNotes = deref(r.ClaimNotes)
	dto.RejectionReason = deref(r.RejectionReason)
	return dto
}

func toAuditDTO(e audit.Entry) AuditEntryDTO {
	return AuditEntryDTO{
		EntryID:    e.EntryID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		ActorID:    e.ActorID,
		Reason:     deref(e.Reason),
		Notes:      deref(e.Notes),
		OccurredAt: e.OccurredAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
