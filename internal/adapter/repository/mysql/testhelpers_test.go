package mysql

import (
	"testing"
	"time"

	"registrar-workflow/internal/domain/payment"
	"registrar-workflow/internal/domain/request"
	"registrar-workflow/pkg/id"

	"github.com/shopspring/decimal"
)

var t0 = time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC)

func makeRequest(t *testing.T, deadline time.Time) *request.Request {
	t.Helper()
	r, err := request.New(request.NewRequestInput{
		RequesterID:     id.NewID32(),
		DocumentType:    "Transcript of Records",
		Quantity:        1,
		Purpose:         "Scholarship",
		Amount:          decimal.RequireFromString("150.00"),
		PaymentDeadline: &deadline,
	}, t0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

func makePayment(requestID uint64, ref string) *payment.Payment {
	return &payment.Payment{
		RequestID:       requestID,
		Amount:          decimal.RequireFromString("150.00"),
		Method:          payment.MethodCash,
		Status:          payment.StatusPending,
		ReferenceNumber: ref,
	}
}
