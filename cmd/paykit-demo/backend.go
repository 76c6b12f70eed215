package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/billing/memory"
	"github.com/dmitrymomot/paykit/pkg/billing/paddle"
	"github.com/dmitrymomot/paykit/pkg/billing/postgres"
	"github.com/dmitrymomot/paykit/pkg/billing/redisstore"
	"github.com/dmitrymomot/paykit/pkg/billing/stripe"
)

// openBackend builds the configured backend. The returned cleanup releases
// its connections and is never nil.
func openBackend(ctx context.Context, cfg appConfig, log *slog.Logger) (*billing.Billing, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case backendMemory:
		return memory.New(memory.WithLogger(log)), noop, nil

	case backendStripe:
		stripeCfg, err := stripe.ConfigFromEnv()
		if err != nil {
			return nil, noop, err
		}
		b, err := stripe.New(stripeCfg, stripe.WithLogger(log))
		return b, noop, err

	case backendRedis:
		redisCfg, err := redisstore.ConfigFromEnv()
		if err != nil {
			return nil, noop, err
		}
		client, err := redisstore.Connect(ctx, redisCfg)
		if err != nil {
			return nil, noop, err
		}
		b := redisstore.New(client,
			redisstore.WithKeyPrefix(redisCfg.KeyPrefix),
			redisstore.WithLogger(log),
		)
		return b, func() { _ = client.Close() }, nil

	case backendPostgres:
		pgCfg, err := postgres.ConfigFromEnv()
		if err != nil {
			return nil, noop, err
		}
		pool, err := postgres.Connect(ctx, pgCfg)
		if err != nil {
			return nil, noop, err
		}
		if err := postgres.Migrate(ctx, pool, pgCfg, log); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return postgres.New(pool, postgres.WithLogger(log)), pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown BILLING_BACKEND %q, use memory, stripe, redis or postgres", cfg.Backend)
	}
}

// withSessions swaps the session issuer when BILLING_SESSIONS names one.
func withSessions(b *billing.Billing, cfg appConfig, log *slog.Logger) (*billing.Billing, error) {
	switch cfg.Sessions {
	case "":
		return b, nil
	case sessionsPaddle:
		paddleCfg, err := paddle.ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		sessions, err := paddle.New(paddleCfg,
			paddle.WithCustomers(b.Customers()),
			paddle.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		return billing.New(b.Customers(), b.Subscriptions(), sessions), nil
	default:
		return nil, fmt.Errorf("unknown BILLING_SESSIONS %q, use paddle or leave empty", cfg.Sessions)
	}
}
