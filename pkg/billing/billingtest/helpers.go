package billingtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/billing"
)

func createCustomer(t *testing.T, ctx context.Context, b *billing.Billing, email string) billing.Customer {
	t.Helper()
	c, err := b.Customers().Create(ctx, billing.NewCustomer{Email: email})
	require.NoError(t, err)
	return c
}

func readyCustomer(t *testing.T, ctx context.Context, b *billing.Billing) billing.Customer {
	t.Helper()
	c := createCustomer(t, ctx, b, "ready@example.com")
	require.NoError(t, b.Customers().SetupPayments(ctx, c.ID))
	c.PaymentReady = true
	return c
}

func createSubscription(t *testing.T, ctx context.Context, b *billing.Billing, customerID string, trial time.Duration) billing.Subscription {
	t.Helper()
	sub, err := b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: customerID, TrialPeriod: trial})
	require.NoError(t, err)
	assert.Equal(t, customerID, sub.CustomerID)
	return sub
}

func requireOp(t *testing.T, ctx context.Context, op func(context.Context, string) (billing.Subscription, error), id string, want billing.Status) {
	t.Helper()
	sub, err := op(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, sub.ID)
	assert.Equal(t, want, sub.Status)
}

func requireStatus(t *testing.T, ctx context.Context, b *billing.Billing, id string, want billing.Status) {
	t.Helper()
	sub, err := b.Subscriptions().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want, sub.Status)
}

func requireNotFound(t *testing.T, err error, kind billing.Kind, id string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, billing.ErrNotFound)
	assert.True(t, billing.IsNotFound(err, kind), "expected %s not found, got: %v", kind, err)

	gotID, ok := billing.NotFoundID(err)
	assert.True(t, ok)
	assert.Equal(t, id, gotID)
}

func customerIDs(customers []billing.Customer) []string {
	ids := make([]string, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.ID)
	}
	return ids
}

func subscriptionIDs(subs []billing.Subscription) []string {
	ids := make([]string, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ID)
	}
	return ids
}
