package http

import (
	"bytes"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"registrar-workflow/internal/adapter/middleware"
	"registrar-workflow/internal/adapter/repository/mysql"
	"registrar-workflow/internal/testutil/sqlitedb"
	claimUC "registrar-workflow/internal/usecase/claim"
	paymentUC "registrar-workflow/internal/usecase/payment"
	requestUC "registrar-workflow/internal/usecase/request"
	"registrar-workflow/internal/usecase/transition"
	"registrar-workflow/pkg/clock"

	"github.com/labstack/echo/v4"
)

var (
	student = strings.Repeat("a", 32)
	other   = strings.Repeat("c", 32)
	staff   = strings.Repeat("d", 32)
	cashier = strings.Repeat("e", 32)
)

// newServer wires the real usecases over in-memory sqlite.
func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	db := sqlitedb.Open(t)
	clk := clock.NewFixed(time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC))
	requests := mysql.NewRequestRepository(db)
	tx := mysql.NewGormUoW(db)
	emit := transition.NewEmitter(nil, nil)

	reqUC := requestUC.NewUsecase(requests, mysql.NewAuditRepository(db), tx, emit, clk)
	reqUC.PaymentWindow = 72 * time.Hour

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	RegisterRoutes(e, Handlers{
		Health:   NewHandler(nil),
		Requests: NewRequestHandler(reqUC),
		Payments: NewPaymentHandler(paymentUC.NewUsecase(mysql.NewPaymentRepository(db), requests, tx, emit, clk)),
		Claims:   NewClaimHandler(claimUC.NewUsecase(tx, emit, clk)),
	})
	return e
}

// rawBody is sent as-is instead of being JSON-encoded.
type rawBody struct{ io.Reader }

func mustJSON(v any) io.Reader {
	switch b := v.(type) {
	case nil:
		return nil
	case rawBody:
		return b.Reader
	}
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func call(t *testing.T, e *echo.Echo, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, mustJSON(body))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actor != "" {
		req.Header.Set(middleware.HeaderActorID, actor)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, want, rec.Body.String())
	}
}

func createRequest(t *testing.T, e *echo.Echo) requestUC.RequestDTO {
	t.Helper()
	rec := call(t, e, stdhttp.MethodPost, "/requests", student, map[string]any{
		"document_type": "Transcript of Records",
		"quantity":      2,
		"purpose":       "Employment",
		"amount":        "150.00",
	})
	expectStatus(t, rec, stdhttp.StatusCreated)
	return decode[requestUC.RequestDTO](t, rec)
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
