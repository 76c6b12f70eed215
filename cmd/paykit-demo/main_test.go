package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/billing/memory"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

func testConfig() appConfig {
	return appConfig{
		Backend:     backendMemory,
		TrialPeriod: 24 * time.Hour,
		Email:       "demo@example.com",
		SuccessURL:  "https://app.example.com/success",
		ReturnURL:   "https://app.example.com/account",
	}
}

func TestScenario_Memory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := memory.New()

	require.NoError(t, scenario(ctx, b, testConfig(), logger.Discard()))

	customers, err := b.Customers().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestOpenBackend(t *testing.T) {
	t.Parallel()

	b, cleanup, err := openBackend(context.Background(), testConfig(), logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	defer cleanup()
	assert.NotNil(t, b)

	cfg := testConfig()
	cfg.Backend = "sqlite"
	_, cleanup, err = openBackend(context.Background(), cfg, logger.Discard())
	assert.ErrorContains(t, err, `unknown BILLING_BACKEND "sqlite"`)
	assert.NotNil(t, cleanup)
}

func TestWithSessions(t *testing.T) {
	t.Parallel()

	b := memory.New()

	got, err := withSessions(b, testConfig(), logger.Discard())
	require.NoError(t, err)
	assert.Same(t, b, got)

	cfg := testConfig()
	cfg.Sessions = "braintree"
	_, err = withSessions(b, cfg, logger.Discard())
	assert.ErrorContains(t, err, `unknown BILLING_SESSIONS "braintree"`)
}
