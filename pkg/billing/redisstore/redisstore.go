// Package redisstore implements billing contracts on Redis so several
// processes can share customer and subscription state.
//
// Layout, for prefix p:
//
//	p:seq                         INCR counter ordering records by creation
//	p:customers                   ZSET of customer ids
//	p:customer:{id}               HASH email, payment_ready
//	p:customer:{id}:subscriptions ZSET of subscription ids
//	p:subscription:{id}           HASH customer_id, status, trial_ends_at
//
// Lifecycle transitions run in WATCH/MULTI/EXEC transactions on the
// subscription key and are retried on conflict.
package redisstore

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/billing/memory"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

const (
	DefaultKeyPrefix  = "paykit"
	DefaultMaxRetries = 10
)

type store struct {
	client     redis.UniversalClient
	prefix     string
	maxRetries int
	lifecycle  *billing.Lifecycle
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
	sessions   []memory.Option
}

// Option configures the Redis backend.
type Option func(*store)

// WithKeyPrefix namespaces every key. Empty keeps DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithMaxRetries bounds optimistic transaction retries before
// ErrTransactionConflict is returned.
func WithMaxRetries(n int) Option {
	return func(s *store) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithLogger sets the logger for debug events.
func WithLogger(l *slog.Logger) Option {
	return func(s *store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithSessionOptions configures the session issuer, for example its base URLs.
func WithSessionOptions(opts ...memory.Option) Option {
	return func(s *store) {
		s.sessions = append(s.sessions, opts...)
	}
}

// New creates a Redis-backed billing backend. It panics if client is nil.
func New(client redis.UniversalClient, opts ...Option) *billing.Billing {
	if client == nil {
		panic("redisstore: client cannot be nil")
	}

	s := &store{
		client:     client,
		prefix:     DefaultKeyPrefix,
		maxRetries: DefaultMaxRetries,
		lifecycle:  billing.NewLifecycle(),
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	customers := &Customers{store: s}
	sessionOpts := append([]memory.Option{memory.WithLogger(s.logger)}, s.sessions...)
	return billing.New(
		customers,
		&Subscriptions{store: s},
		memory.NewSessions(customers, sessionOpts...),
	)
}

func (s *store) seqKey() string { return s.prefix + ":seq" }

func (s *store) customersKey() string { return s.prefix + ":customers" }

func (s *store) customerKey(id string) string { return s.prefix + ":customer:" + id }

func (s *store) customerSubsKey(id string) string {
	return s.prefix + ":customer:" + id + ":subscriptions"
}

func (s *store) subscriptionKey(id string) string { return s.prefix + ":subscription:" + id }
