package memory

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

const (
	DefaultCheckoutBaseURL = "https://checkout.example.com/session"
	DefaultPortalBaseURL   = "https://billing.example.com/portal"
)

type options struct {
	now         func() time.Time
	newID       func() string
	checkoutURL string
	portalURL   string
	logger      *slog.Logger
	lifecycle   *billing.Lifecycle
}

// Option configures the in-memory backend.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		now:         time.Now,
		newID:       uuid.NewString,
		checkoutURL: DefaultCheckoutBaseURL,
		portalURL:   DefaultPortalBaseURL,
		logger:      logger.Discard(),
		lifecycle:   billing.NewLifecycle(),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithClock overrides the time source used for trial end dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides id generation for customers, subscriptions and sessions.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// WithCheckoutBaseURL sets the base of generated checkout session URLs.
func WithCheckoutBaseURL(base string) Option {
	return func(o *options) {
		if base != "" {
			o.checkoutURL = strings.TrimRight(base, "/")
		}
	}
}

// WithPortalBaseURL sets the base of generated portal session URLs.
func WithPortalBaseURL(base string) Option {
	return func(o *options) {
		if base != "" {
			o.portalURL = strings.TrimRight(base, "/")
		}
	}
}

// WithLogger sets the logger for debug events. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
