// Package instrumented decorates any billing backend with structured logging
// and Prometheus metrics. Every call is logged with its outcome and duration
// and counted by component, operation and outcome.
//
//	b := instrumented.Wrap(stripeBilling,
//		instrumented.WithComponent("stripe"),
//		instrumented.WithLogger(log),
//		instrumented.WithMetrics(instrumented.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//
// The decorator does not change results: values and errors from the wrapped
// backend are returned as is.
package instrumented

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

type recorder struct {
	component string
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time
}

// Option configures the decorator.
type Option func(*recorder)

// WithComponent sets the component label, typically the backend name.
func WithComponent(name string) Option {
	return func(r *recorder) {
		if name != "" {
			r.component = name
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics enables Prometheus recording. Without it only logs are written.
func WithMetrics(m *Metrics) Option {
	return func(r *recorder) {
		r.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// Wrap returns a Billing whose capabilities record every call to b.
// It panics if b is nil.
func Wrap(b *billing.Billing, opts ...Option) *billing.Billing {
	if b == nil {
		panic("instrumented: billing cannot be nil")
	}

	r := &recorder{
		component: "billing",
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component(r.component))

	return billing.New(
		&customers{next: b.Customers(), rec: r},
		&subscriptions{next: b.Subscriptions(), rec: r},
		&sessions{next: b.Sessions(), rec: r},
	)
}

// observe records one finished call. attrs identify the entity involved.
func (r *recorder) observe(ctx context.Context, op string, start time.Time, err error, attrs ...slog.Attr) {
	elapsed := r.now().Sub(start)
	result := outcome(err)

	if r.metrics != nil {
		r.metrics.operations.WithLabelValues(r.component, op, result).Inc()
		r.metrics.duration.WithLabelValues(r.component, op).Observe(elapsed.Seconds())
	}

	attrs = append(attrs,
		logger.Operation(op),
		slog.String("outcome", result),
		logger.Duration(elapsed),
	)
	level := slog.LevelInfo
	switch result {
	case OutcomeOK:
	case OutcomeProvider, OutcomeUnknownStatus, OutcomeError:
		level = slog.LevelError
		attrs = append(attrs, logger.Error(err))
	default:
		level = slog.LevelWarn
		attrs = append(attrs, logger.Error(err))
	}
	r.logger.LogAttrs(ctx, level, "billing operation", attrs...)
}

func (r *recorder) status(op string, sub billing.Subscription) {
	if r.metrics != nil {
		r.metrics.transition.WithLabelValues(r.component, op, sub.Status.String()).Inc()
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
