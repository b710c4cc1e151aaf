package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCash    Method = "cash"
	MethodDigital Method = "digital"
)

func (m Method) Valid() bool { return m == MethodCash || m == MethodDigital }

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Failure reasons recorded when a pending payment is invalidated.
const (
	ReasonSuperseded = "superseded"
	ReasonExpired    = "request payment window expired"
	ReasonCancelled  = "request cancelled"
	ReasonPaidOther  = "request paid by another payment"
)

// Payment is one attempt to pay for a request. At most one payment per
// request reaches StatusPaid.
type Payment struct {
	ID                    uint64          `gorm:"primaryKey;column:id" json:"-"`
	RequestID             uint64          `gorm:"column:request_id;not null;index" json:"-"`
	Amount                decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Method                Method          `gorm:"column:method;size:16;not null" json:"method"`
	Status                Status          `gorm:"column:status;size:16;not null;index" json:"status"`
	ReferenceNumber       string          `gorm:"column:payment_reference_number;size:32;not null;uniqueIndex" json:"payment_reference_number"`
	TransactionID         *string         `gorm:"column:transaction_id;size:128;uniqueIndex" json:"transaction_id,omitempty"`
	OfficialReceiptNumber *string         `gorm:"column:official_receipt_number;size:64" json:"official_receipt_number,omitempty"`
	CashierID             *string         `gorm:"column:cashier_id;size:64" json:"cashier_id,omitempty"`
	PaidAt                *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	FailedAt              *time.Time      `gorm:"column:failed_at" json:"failed_at,omitempty"`
	FailureReason         *string         `gorm:"column:failure_reason;size:128" json:"failure_reason,omitempty"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) IsPending() bool { return p.Status == StatusPending }
func (p *Payment) IsPaid() bool    { return p.Status == StatusPaid }

// Receipt is what the cashier hands back once a payment is confirmed.
type Receipt struct {
	ReferenceNumber       string          `json:"payment_reference_number"`
	OfficialReceiptNumber string          `json:"official_receipt_number"`
	RequestID             string          `json:"request_id"`
	RequestNumber         string          `json:"request_number"`
	DocumentType          string          `json:"document_type"`
	Quantity              int             `json:"quantity"`
	Amount                decimal.Decimal `json:"amount"`
	Method                Method          `json:"method"`
	CashierID             string          `json:"cashier_id,omitempty"`
	PaidAt                time.Time       `json:"paid_at"`
}
