// Package postgres implements billing contracts on PostgreSQL using pgx.
//
// Customers and subscriptions live in billing_customers and
// billing_subscriptions, created by Migrate from embedded goose migrations.
// Lifecycle transitions lock the subscription row with SELECT ... FOR UPDATE
// so concurrent Cancel, Pause and Resume calls serialize on the database.
//
//	pool, err := postgres.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := postgres.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	b := postgres.New(pool, postgres.WithLogger(log))
package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/billing/memory"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type store struct {
	db        DB
	lifecycle *billing.Lifecycle
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	sessions  []memory.Option
}

// Option configures the Postgres backend.
type Option func(*store)

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

// WithSessionOptions configures the session issuer.
func WithSessionOptions(opts ...memory.Option) Option {
	return func(s *store) {
		s.sessions = append(s.sessions, opts...)
	}
}

// New creates a Postgres-backed billing backend. The schema must already be
// migrated. It panics if db is nil.
func New(db DB, opts ...Option) *billing.Billing {
	if db == nil {
		panic("postgres: db cannot be nil")
	}

	s := &store{
		db:        db,
		lifecycle: billing.NewLifecycle(),
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logger.Discard(),
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
