package instrumented_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/billing/billingtest"
	"github.com/dmitrymomot/paykit/pkg/billing/instrumented"
	"github.com/dmitrymomot/paykit/pkg/billing/memory"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

func TestContract(t *testing.T) {
	t.Parallel()

	billingtest.Run(t, func(t *testing.T) *billing.Billing {
		return instrumented.Wrap(memory.New(),
			instrumented.WithLogger(logger.Discard()),
			instrumented.WithMetrics(instrumented.NewMetrics(prometheus.NewRegistry())),
		)
	})
}

func TestWrap_NilPanics(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t, "instrumented: billing cannot be nil", func() {
		instrumented.Wrap(nil)
	})
}

func TestWrap_CountsOutcomes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := instrumented.NewMetrics(reg)
	b := instrumented.Wrap(memory.New(),
		instrumented.WithComponent("memory"),
		instrumented.WithLogger(logger.Discard()),
		instrumented.WithMetrics(metrics),
	)

	c, err := b.Customers().Create(ctx, billing.NewCustomer{Email: "metrics@example.com"})
	require.NoError(t, err)
	require.NoError(t, b.Customers().SetupPayments(ctx, c.ID))
	sub, err := b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: c.ID})
	require.NoError(t, err)
	_, err = b.Subscriptions().Cancel(ctx, sub.ID)
	require.NoError(t, err)

	_, err = b.Subscriptions().Pause(ctx, sub.ID)
	require.NoError(t, err)
	_, err = b.Customers().Get(ctx, "missing")
	require.ErrorIs(t, err, billing.ErrNotFound)
	_, err = b.Customers().Create(ctx, billing.NewCustomer{})
	require.ErrorIs(t, err, billing.ErrInvalidInput)

	counter := func(op, outcome string) float64 {
		return operationCount(t, reg, op, outcome)
	}
	assert.Equal(t, float64(1), counter("customers.setup_payments", instrumented.OutcomeOK))
	assert.Equal(t, float64(1), counter("subscriptions.create", instrumented.OutcomeOK))
	assert.Equal(t, float64(1), counter("subscriptions.cancel", instrumented.OutcomeOK))
	assert.Equal(t, float64(1), counter("subscriptions.pause", instrumented.OutcomeOK))
	assert.Equal(t, float64(1), counter("customers.get", instrumented.OutcomeNotFound))
	assert.Equal(t, float64(1), counter("customers.create", instrumented.OutcomeInvalidInput))
	assert.Equal(t, float64(1), counter("customers.create", instrumented.OutcomeOK))

	expected := `
# HELP paykit_billing_subscription_status_total Subscription statuses returned by create and lifecycle operations
# TYPE paykit_billing_subscription_status_total counter
paykit_billing_subscription_status_total{component="memory",operation="subscriptions.cancel",status="canceled"} 1
paykit_billing_subscription_status_total{component="memory",operation="subscriptions.create",status="active"} 1
paykit_billing_subscription_status_total{component="memory",operation="subscriptions.pause",status="paused"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "paykit_billing_subscription_status_total"))

	n, err := testutil.GatherAndCount(reg, "paykit_billing_operation_duration_seconds")
	require.NoError(t, err)
	assert.Positive(t, n)
}

// operationCount reads paykit_billing_operations_total for one operation
// and outcome across all components.
func operationCount(t *testing.T, reg *prometheus.Registry, op, outcome string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		if f.GetName() != "paykit_billing_operations_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["operation"] == op && labels["outcome"] == outcome {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestWrap_LogsOperations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var buf bytes.Buffer
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := instrumented.Wrap(memory.New(),
		instrumented.WithComponent("memory"),
		instrumented.WithLogger(logger.New(logger.WithOutput(&buf), logger.WithJSONFormatter(), logger.WithLevel(slog.LevelDebug))),
		instrumented.WithClock(func() time.Time {
			clock = clock.Add(25 * time.Millisecond)
			return clock
		}),
	)

	_, err := b.Subscriptions().Get(ctx, "sub_missing")
	require.Error(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "billing operation", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "memory", entry["component"])
	assert.Equal(t, "subscriptions.get", entry["operation"])
	assert.Equal(t, instrumented.OutcomeNotFound, entry["outcome"])
	assert.Equal(t, "sub_missing", entry["subscription_id"])
	assert.NotEmpty(t, entry["error"])
}

type failingSessions struct{ err error }

func (f failingSessions) CreateSubscriptionSession(context.Context, billing.NewSubscriptionSession) (string, error) {
	return "", f.err
}

func (f failingSessions) CreateManagementSession(context.Context, billing.NewManagementSession) (string, error) {
	return "", f.err
}

func TestWrap_PassesErrorsThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cause := errors.Join(billing.ErrProvider, errors.New("upstream timeout"))
	store := memory.NewCustomers()
	inner := billing.New(store, memory.NewSubscriptions(store), failingSessions{err: cause})

	reg := prometheus.NewRegistry()
	b := instrumented.Wrap(inner,
		instrumented.WithLogger(logger.Discard()),
		instrumented.WithMetrics(instrumented.NewMetrics(reg)),
	)

	_, err := b.Sessions().CreateSubscriptionSession(ctx, billing.NewSubscriptionSession{
		CustomerID: "c1",
		SuccessURL: "https://app.example.com/ok",
	})
	assert.Same(t, cause, err)
	assert.Equal(t, float64(1), operationCount(t, reg, "sessions.checkout", instrumented.OutcomeProvider))

	_, err = b.Sessions().CreateManagementSession(ctx, billing.NewManagementSession{CustomerID: "c1", ReturnURL: "https://app.example.com"})
	assert.ErrorIs(t, err, billing.ErrProvider)

	stateErr := &billing.StateError{SubscriptionID: "s1", Status: billing.Status("on_hold"), Op: billing.OpPause}
	rejectReg := prometheus.NewRegistry()
	rejecting := instrumented.Wrap(
		billing.New(store, memory.NewSubscriptions(store), failingSessions{err: stateErr}),
		instrumented.WithLogger(logger.Discard()),
		instrumented.WithMetrics(instrumented.NewMetrics(rejectReg)),
	)
	_, err = rejecting.Sessions().CreateManagementSession(ctx, billing.NewManagementSession{CustomerID: "c1", ReturnURL: "https://app.example.com"})
	assert.Same(t, stateErr, err)
	assert.Equal(t, float64(1), operationCount(t, rejectReg, "sessions.portal", instrumented.OutcomeInvalidState))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	instrumented.NewMetrics(reg)
	assert.Panics(t, func() { instrumented.NewMetrics(reg) })
}
