package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health   *Handler
	Requests *RequestHandler
	Payments *PaymentHandler
	Claims   *ClaimHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Health)

	r := e.Group("/requests")
	r.POST("", h.Requests.CreateRequest)
	r.GET("/:request_id", h.Requests.GetRequest)
	r.GET("/:request_id/audit", h.Requests.AuditTrail)
	r.POST("/:request_id/processing", h.Requests.StartProcessing)
	r.POST("/:request_id/ready", h.Requests.MarkReady)
	r.POST("/:request_id/release", h.Requests.Release)
	r.POST("/:request_id/reject", h.Requests.Reject)
	r.POST("/:request_id/cancel", h.Requests.Cancel)
	r.POST("/:request_id/claim", h.Claims.ConfirmClaim)
	r.POST("/:request_id/payments/cash", h.Payments.GenerateCash)

	p := e.Group("/payments")
	p.POST("/digital/callback", h.Payments.DigitalCallback)
	p.GET("/:reference", h.Payments.Lookup)
	p.POST("/:reference/confirm", h.Payments.ConfirmCash)
	p.GET("/:reference/receipt", h.Payments.Receipt)
}
