package payment

import (
	"time"

	domain "registrar-workflow/internal/domain/payment"
	"registrar-workflow/internal/domain/request"

	"github.com/shopspring/decimal"
)

type GenerateCashInput struct {
	RequestID string          `json:"request_id"`
	Amount    decimal.Decimal `json:"amount"`
	Actor     string          `json:"-"`
}

type ConfirmCashInput struct {
	Reference             string `json:"payment_reference_number"`
	OfficialReceiptNumber string `json:"official_receipt_number"`
	CashierID             string `json:"cashier_id"`
}

// DigitalCallbackInput is what the payment gateway reports for a settled
// digital payment.
type DigitalCallbackInput struct {
	RequestID     string          `json:"request_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type PaymentDTO struct {
	Reference             string     `json:"payment_reference_number"`
	RequestID             string     `json:"request_id"`
	RequestNumber         string     `json:"request_number"`
	DocumentType          string     `json:"document_type"`
	Amount                string     `json:"amount"`
	Method                string     `json:"method"`
	Status                string     `json:"status"`
	RequestStatus         string     `json:"request_status"`
	TransactionID         string     `json:"transaction_id,omitempty"`
	OfficialReceiptNumber string     `json:"official_receipt_number,omitempty"`
	CashierID             string     `json:"cashier_id,omitempty"`
	PaidAt                *time.Time `json:"paid_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

func toDTO(p *domain.Payment, r *request.Request) *PaymentDTO {
	dto := &PaymentDTO{
		Reference: p.ReferenceNumber,
		Amount:    p.Amount.StringFixed(2),
		Method:    string(p.Method),
		Status:    string(p.Status),
		PaidAt:    p.PaidAt,
		CreatedAt: p.CreatedAt,
	}
	if r != nil {
		dto.RequestID = r.RequestID
		dto.RequestNumber = r.RequestNumber
		dto.DocumentType = r.DocumentType
		dto.RequestStatus = string(r.Status)
	}
	if p.TransactionID != nil {
		dto.TransactionID = *p.TransactionID
	}
	if p.OfficialReceiptNumber != nil {
		dto.OfficialReceiptNumber = *p.OfficialReceiptNumber
	}
	if p.CashierID != nil {
		dto.CashierID = *p.CashierID
	}
	return dto
}
