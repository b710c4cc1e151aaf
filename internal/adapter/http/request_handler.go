package http

import (
	"context"
	"net/http"
	"strings"

	"registrar-workflow/internal/adapter/middleware"
	requestUC "registrar-workflow/internal/usecase/request"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type RequestHandler struct{ uc *requestUC.Usecase }

func NewRequestHandler(uc *requestUC.Usecase) *RequestHandler { return &RequestHandler{uc: uc} }

type createRequestReq struct {
	DocumentType string `json:"document_type" validate:"required,max=128"`
	Quantity     int    `json:"quantity"      validate:"gte=1"`
	Purpose      string `json:"purpose"       validate:"max=255"`
	Amount       string `json:"amount"        validate:"required,money"`
}

type reasonReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CreateRequest files a new request for the calling student.
func (h *RequestHandler) CreateRequest(c echo.Context) error {
	actor := middleware.ActorID(c)
	if actor == "" {
		return missingActor(c)
	}
	var req createRequestReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), requestUC.CreateRequestInput{
		RequesterID:  actor,
		DocumentType: req.DocumentType,
		Quantity:     req.Quantity,
		Purpose:      req.Purpose,
		Amount:       decimal.RequireFromString(strings.TrimSpace(req.Amount)),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *RequestHandler) GetRequest(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) AuditTrail(c echo.Context) error {
	entries, err := h.uc.AuditTrail(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}

func (h *RequestHandler) StartProcessing(c echo.Context) error {
	return h.staffStep(c, h.uc.StartProcessing)
}

func (h *RequestHandler) MarkReady(c echo.Context) error {
	return h.staffStep(c, h.uc.MarkReady)
}

func (h *RequestHandler) Release(c echo.Context) error {
	return h.staffStep(c, h.uc.Release)
}

func (h *RequestHandler) Reject(c echo.Context) error {
	return h.reasonStep(c, h.uc.Reject)
}

func (h *RequestHandler) Cancel(c echo.Context) error {
	return h.reasonStep(c, h.uc.Cancel)
}

func (h *RequestHandler) staffStep(c echo.Context, fn func(ctx context.Context, requestID, actor string) (*requestUC.RequestDTO, error)) error {
	actor := middleware.ActorID(c)
	if actor == "" {
		return missingActor(c)
	}
	dto, err := fn(c.Request().Context(), c.Param("request_id"), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) reasonStep(c echo.Context, fn func(ctx context.Context, requestID, reason, actor string) (*requestUC.RequestDTO, error)) error {
	actor := middleware.ActorID(c)
	if actor == "" {
		return missingActor(c)
	}
	var req reasonReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := fn(c.Request().Context(), c.Param("request_id"), req.Reason, actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
