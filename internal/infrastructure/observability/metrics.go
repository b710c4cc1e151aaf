package observability

import (
	"registrar-workflow/internal/domain/apperr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts committed status changes.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_transitions_total",
		Help: "Total number of committed request status transitions",
	}, []string{"from", "to"})

	// TransitionFailuresTotal counts failed workflow operations by error kind.
	TransitionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_transition_failures_total",
		Help: "Total number of failed workflow operations by error kind",
	}, []string{"kind"})

	// PaymentsConfirmedTotal counts payments marked paid by method.
	PaymentsConfirmedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_payments_confirmed_total",
		Help: "Total number of confirmed payments by method",
	}, []string{"method"})

	// ExpirySweepsTotal counts requests expired by the payment-deadline sweeper.
	ExpirySweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registrar_expiry_sweeps_total",
		Help: "Total number of requests expired by the payment deadline sweeper",
	})
)

func RecordTransition(from, to string) {
	TransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordFailure labels err by its apperr kind; storage faults count as "internal".
func RecordFailure(err error) {
	if err == nil {
		return
	}
	kind := string(apperr.KindOf(err))
	if kind == "" {
		kind = "internal"
	}
	TransitionFailuresTotal.WithLabelValues(kind).Inc()
}

func RecordPaymentConfirmed(method string) {
	PaymentsConfirmedTotal.WithLabelValues(method).Inc()
}

func RecordExpired(n int) {
	if n > 0 {
		ExpirySweepsTotal.Add(float64(n))
	}
}
