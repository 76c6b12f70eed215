package instrumented

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/paykit/pkg/billing"
)

// Outcome label values.
const (
	OutcomeOK            = "ok"
	OutcomeNotFound      = "not_found"
	OutcomeInvalidState  = "invalid_state"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeUnknownStatus = "unknown_status"
	OutcomeProvider      = "provider_error"
	OutcomeCanceled      = "canceled"
	OutcomeError         = "error"
)

// Metrics holds the collectors recorded for every billing operation.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	transition *prometheus.CounterVec
}

// NewMetrics registers the billing collectors with reg. A nil reg uses
// prometheus.DefaultRegisterer. Registering twice on the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paykit_billing_operations_total",
				Help: "Total number of billing operations by component, operation and outcome",
			},
			[]string{"component", "operation", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paykit_billing_operation_duration_seconds",
				Help:    "Duration of billing operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"component", "operation"},
		),
		transition: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paykit_billing_subscription_status_total",
				Help: "Subscription statuses returned by create and lifecycle operations",
			},
			[]string{"component", "operation", "status"},
		),
	}
}

// outcome classifies err into a bounded label value.
func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, billing.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, billing.ErrInvalidState):
		return OutcomeInvalidState
	case errors.Is(err, billing.ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, billing.ErrUnknownStatus):
		return OutcomeUnknownStatus
	case errors.Is(err, billing.ErrProvider):
		return OutcomeProvider
	case isContextError(err):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
