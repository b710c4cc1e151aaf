package http

import (
	"net/http"
	"strings"

	"registrar-workflow/internal/adapter/middleware"
	paymentUC "registrar-workflow/internal/usecase/payment"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct{ uc *paymentUC.Usecase }

func NewPaymentHandler(uc *paymentUC.Usecase) *PaymentHandler { return &PaymentHandler{uc: uc} }

type generateCashReq struct {
	Amount string `json:"amount" validate:"required,money"`
}

// The official receipt number is checked by the ledger so an empty value is
// reported as a precondition failure on that field.
type confirmCashReq struct {
	OfficialReceiptNumber string `json:"official_receipt_number" validate:"max=64"`
}

type digitalCallbackReq struct {
	RequestID     string `json:"request_id"     validate:"required,hex32"`
	TransactionID string `json:"transaction_id" validate:"required,max=64"`
	Amount        string `json:"amount"         validate:"required,money"`
}

func (h *PaymentHandler) GenerateCash(c echo.Context) error {
	actor := middleware.ActorID(c)
	if actor == "" {
		return missingActor(c)
	}
	var req generateCashReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.GenerateCashPayment(c.Request().Context(), paymentUC.GenerateCashInput{
		RequestID: c.Param("request_id"),
		Amount:    decimal.RequireFromString(strings.TrimSpace(req.Amount)),
		Actor:     actor,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PaymentHandler) Lookup(c echo.Context) error {
	dto, err := h.uc.LookupByReference(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ConfirmCash records the cashier's confirmation. The cashier is the actor.
func (h *PaymentHandler) ConfirmCash(c echo.Context) error {
	actor := middleware.ActorID(c)
	if actor == "" {
		return missingActor(c)
	}
	var req confirmCashReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ConfirmCashPayment(c.Request().Context(), paymentUC.ConfirmCashInput{
		Reference:             c.Param("reference"),
		OfficialReceiptNumber: req.OfficialReceiptNumber,
		CashierID:             actor,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *PaymentHandler) Receipt(c echo.Context) error {
	receipt, err := h.uc.GetReceipt(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, receipt)
}

func (h *PaymentHandler) DigitalCallback(c echo.Context) error {
	var req digitalCallbackReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ConfirmDigitalPayment(c.Request().Context(), paymentUC.DigitalCallbackInput{
		RequestID:     req.RequestID,
		TransactionID: req.TransactionID,
		Amount:        decimal.RequireFromString(strings.TrimSpace(req.Amount)),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
