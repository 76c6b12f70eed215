package memory_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/billing/billingtest"
	"github.com/dmitrymomot/paykit/pkg/billing/memory"
)

func TestContract(t *testing.T) {
	t.Parallel()

	billingtest.Run(t, func(t *testing.T) *billing.Billing {
		return memory.New()
	})
}

func TestContract_Scoped(t *testing.T) {
	t.Parallel()

	billingtest.Run(t, func(t *testing.T) *billing.Billing {
		b := memory.New()
		// A customer outside the test domain must survive every reset.
		_, err := b.Customers().Create(t.Context(), billing.NewCustomer{Email: "real@customer.io"})
		require.NoError(t, err)
		return billingtest.Scoped(b, billingtest.DefaultTestDomain)
	})
}

func TestSubscriptions_ListPreservesCreationOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := memory.New()

	c, err := b.Customers().Create(ctx, billing.NewCustomer{Email: "order@example.com"})
	require.NoError(t, err)

	var want []string
	for range 5 {
		sub, err := b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: c.ID})
		require.NoError(t, err)
		want = append(want, sub.ID)
	}

	subs, err := b.Subscriptions().List(ctx, c.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(subs))
	for _, s := range subs {
		got = append(got, s.ID)
	}
	assert.Equal(t, want, got)
}

func TestCustomers_DeleteKeepsSubscriptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := memory.New()

	c, err := b.Customers().Create(ctx, billing.NewCustomer{Email: "gone@example.com"})
	require.NoError(t, err)
	sub, err := b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: c.ID})
	require.NoError(t, err)

	require.NoError(t, b.Customers().Delete(ctx, c.ID))

	got, err := b.Subscriptions().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.CustomerID)

	subs, err := b.Subscriptions().List(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	_, err = b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: c.ID})
	assert.True(t, billing.IsNotFound(err, billing.KindCustomer))
}

func TestSubscriptions_TrialEndsAtUsesClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := memory.New(memory.WithClock(func() time.Time { return now }))

	c, err := b.Customers().Create(ctx, billing.NewCustomer{Email: "trial@example.com"})
	require.NoError(t, err)
	require.NoError(t, b.Customers().SetupPayments(ctx, c.ID))

	sub, err := b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: c.ID, TrialPeriod: 14 * 24 * time.Hour})
	require.NoError(t, err)
	require.NotNil(t, sub.TrialEndsAt)
	assert.Equal(t, now.Add(14*24*time.Hour), *sub.TrialEndsAt)

	// Returned values are copies.
	*sub.TrialEndsAt = time.Time{}
	got, err := b.Subscriptions().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, now.Add(14*24*time.Hour), *got.TrialEndsAt)
}

func TestSessions_URLs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var n atomic.Int64
	b := memory.New(
		memory.WithIDGenerator(func() string { return fmt.Sprintf("id-%d", n.Add(1)) }),
		memory.WithCheckoutBaseURL("https://pay.local/checkout/"),
	)

	c, err := b.Customers().Create(ctx, billing.NewCustomer{Email: "s@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", c.ID)

	checkout, err := b.Sessions().CreateSubscriptionSession(ctx, billing.NewSubscriptionSession{
		CustomerID: c.ID,
		SuccessURL: "https://example.com/done",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.local/checkout/id-2", checkout)

	portal, err := b.Sessions().CreateManagementSession(ctx, billing.NewManagementSession{
		CustomerID: c.ID,
		ReturnURL:  "https://example.com/account",
	})
	require.NoError(t, err)
	assert.Equal(t, memory.DefaultPortalBaseURL+"/id-3", portal)
}

func TestSessions_Unbound(t *testing.T) {
	t.Parallel()

	s := memory.NewSessions(nil)
	url, err := s.CreateSubscriptionSession(context.Background(), billing.NewSubscriptionSession{
		CustomerID: "anyone",
		SuccessURL: "https://example.com/done",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, memory.DefaultCheckoutBaseURL+"/"))
}

func TestNewSubscriptions_PanicsOnNilCustomers(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { memory.NewSubscriptions(nil) })
}

func TestConcurrentTransitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := memory.New()

	c, err := b.Customers().Create(ctx, billing.NewCustomer{Email: "race@example.com"})
	require.NoError(t, err)
	require.NoError(t, b.Customers().SetupPayments(ctx, c.ID))
	sub, err := b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: c.ID})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = b.Subscriptions().Pause(ctx, sub.ID)
			} else {
				_, _ = b.Subscriptions().Resume(ctx, sub.ID)
			}
		}()
	}
	wg.Wait()

	got, err := b.Subscriptions().Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Contains(t, []billing.Status{billing.StatusActive, billing.StatusPaused}, got.Status)

	canceled, err := b.Subscriptions().Cancel(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusCanceled, canceled.Status)
}
