// Package stripe adapts the Stripe API to the billing contracts.
//
// The adapter translates Stripe's subscription vocabulary through
// billing.ParseStatus and gates every lifecycle operation on the shared
// billing.Lifecycle before calling Stripe, so operations the state machine
// treats as no-ops never reach the provider. Stripe keeps paused
// subscriptions in their collecting status and records the pause in
// pause_collection; the adapter reports those as billing.StatusPaused.
//
// Resume clears pause_collection and ends a running trial. Subscriptions
// Stripe itself paused, after a trial ended without a payment method, go
// through the resume endpoint instead. Stripe decides the resulting status:
// a past_due or unpaid subscription stays in arrears until its open invoice
// is paid, so Resume may return past_due or unpaid rather than active.
//
// Stripe never reopens a canceled or incomplete_expired subscription.
// Transitions out of those statuses that would change them fail with
// ErrSubscriptionEnded joined with billing.ErrProvider; canceling an already
// canceled subscription still succeeds as a no-op.
//
//	cfg, err := stripe.ConfigFromEnv()
//	if err != nil {
//		return err
//	}
//	b, err := stripe.New(cfg, stripe.WithLogger(log))
package stripe

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

type client struct {
	api       API
	cfg       Config
	lifecycle *billing.Lifecycle
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures the Stripe adapter.
type Option func(*client)

// WithLogger sets the logger for adapter debug events.
func WithLogger(l *slog.Logger) Option {
	return func(c *client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used to compute trial end timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Stripe-backed billing backend.
func New(cfg Config, opts ...Option) (*billing.Billing, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewWithAPI(NewAPI(cfg), cfg, opts...)
}

// NewWithAPI creates a billing backend on top of an existing API.
func NewWithAPI(api API, cfg Config, opts ...Option) (*billing.Billing, error) {
	if api == nil {
		panic("stripe: api cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &client{
		api:       api,
		cfg:       cfg,
		lifecycle: billing.NewLifecycle(),
		now:       time.Now,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("stripe"))

	return billing.New(
		&Customers{client: c},
		&Subscriptions{client: c},
		&Sessions{client: c},
	), nil
}
