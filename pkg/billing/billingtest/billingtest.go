package billingtest

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/billing"
)

// Factory returns the backend under test. It is called once per case and
// may register cleanups on t.
type Factory func(t *testing.T) *billing.Billing

const missingID = "non-existing-id"

const trialPeriod = 7 * 24 * time.Hour

type suite struct {
	skipTerminal bool
}

// Option adjusts which cases Run executes.
type Option func(*suite)

// SkipTerminalTransitions leaves out the cases that move canceled or
// expired subscriptions. Use it for providers that refuse to touch
// subscriptions once billing has ended.
func SkipTerminalTransitions() Option {
	return func(s *suite) { s.skipTerminal = true }
}

// Run executes the backend-independent contract suite against the backends
// produced by factory. Every case starts by deleting all customers visible
// to the backend, so shared provider accounts should be scoped with
// DomainCustomers.
func Run(t *testing.T, factory Factory, opts ...Option) {
	t.Helper()

	var s suite
	for _, opt := range opts {
		opt(&s)
	}

	selected := cases
	if !s.skipTerminal {
		selected = append(slices.Clip(cases), terminalCases...)
	}
	for _, tc := range selected {
		t.Run(tc.name, func(t *testing.T) {
			b := factory(t)
			require.NotNil(t, b)
			ctx := t.Context()
			reset(t, ctx, b)
			tc.run(t, ctx, b)
		})
	}
}

func reset(t *testing.T, ctx context.Context, b *billing.Billing) {
	t.Helper()

	customers, err := b.Customers().List(ctx)
	require.NoError(t, err)
	for _, c := range customers {
		require.NoError(t, b.Customers().Delete(ctx, c.ID))
	}
}

type testCase struct {
	name string
	run  func(t *testing.T, ctx context.Context, b *billing.Billing)
}

var cases = []testCase{
	{"get missing subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		_, err := b.Subscriptions().Get(ctx, missingID)
		requireNotFound(t, err, billing.KindSubscription, missingID)
	}},
	{"get missing customer", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		_, err := b.Customers().Get(ctx, missingID)
		requireNotFound(t, err, billing.KindCustomer, missingID)
	}},
	{"cancel missing subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		_, err := b.Subscriptions().Cancel(ctx, missingID)
		requireNotFound(t, err, billing.KindSubscription, missingID)
	}},
	{"delete missing customer", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		err := b.Customers().Delete(ctx, missingID)
		requireNotFound(t, err, billing.KindCustomer, missingID)
	}},
	{"pause missing subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		_, err := b.Subscriptions().Pause(ctx, missingID)
		requireNotFound(t, err, billing.KindSubscription, missingID)
	}},
	{"resume missing subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		_, err := b.Subscriptions().Resume(ctx, missingID)
		requireNotFound(t, err, billing.KindSubscription, missingID)
	}},
	{"setup payments for missing customer", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		err := b.Customers().SetupPayments(ctx, missingID)
		requireNotFound(t, err, billing.KindCustomer, missingID)
	}},
	{"create subscription for missing customer", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		_, err := b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: missingID})
		requireNotFound(t, err, billing.KindCustomer, missingID)
	}},
	{"empty customer list", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		customers, err := b.Customers().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, customers)
	}},
	{"empty subscription list", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")

		subs, err := b.Subscriptions().List(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, subs)
	}},
	{"create and get customer", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		assert.NotEmpty(t, c.ID)
		assert.False(t, c.PaymentReady)

		got, err := b.Customers().Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, "test@example.com", got.Email)
		assert.False(t, got.PaymentReady)
	}},
	{"create and get subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)
		assert.NotEmpty(t, sub.ID)
		assert.Equal(t, billing.StatusIncomplete, sub.Status)

		got, err := b.Subscriptions().Get(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)
		assert.Equal(t, billing.StatusIncomplete, got.Status)
		assert.Equal(t, c.ID, got.CustomerID)
	}},
	{"single customer listed after creation", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")

		customers, err := b.Customers().List(ctx)
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, c.ID, customers[0].ID)
	}},
	{"single subscription listed after creation", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)

		subs, err := b.Subscriptions().List(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, sub.ID, subs[0].ID)
	}},
	{"delete customer", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		require.NoError(t, b.Customers().Delete(ctx, c.ID))

		_, err := b.Customers().Get(ctx, c.ID)
		requireNotFound(t, err, billing.KindCustomer, c.ID)

		customers, err := b.Customers().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, customers)
	}},
	{"list multiple customers", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c1 := createCustomer(t, ctx, b, "user1@example.com")
		c2 := createCustomer(t, ctx, b, "user2@example.com")
		c3 := createCustomer(t, ctx, b, "user3@example.com")

		customers, err := b.Customers().List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{c1.ID, c2.ID, c3.ID}, customerIDs(customers))
	}},
	{"list multiple subscriptions of a customer", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		other := createCustomer(t, ctx, b, "other@example.com")
		s1 := createSubscription(t, ctx, b, c.ID, 0)
		s2 := createSubscription(t, ctx, b, c.ID, 0)
		s3 := createSubscription(t, ctx, b, c.ID, 0)
		createSubscription(t, ctx, b, other.ID, 0)

		subs, err := b.Subscriptions().List(ctx, c.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{s1.ID, s2.ID, s3.ID}, subscriptionIDs(subs))
		for _, s := range subs {
			assert.Equal(t, c.ID, s.CustomerID)
		}
	}},
	{"get each customer individually", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		emails := []string{"user1@example.com", "user2@example.com", "user3@example.com"}
		for _, email := range emails {
			c := createCustomer(t, ctx, b, email)
			got, err := b.Customers().Get(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, c.ID, got.ID)
			assert.Equal(t, email, got.Email)
		}
	}},
	{"get each subscription individually", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		for range 3 {
			sub := createSubscription(t, ctx, b, c.ID, 0)
			got, err := b.Subscriptions().Get(ctx, sub.ID)
			require.NoError(t, err)
			assert.Equal(t, sub.ID, got.ID)
			assert.Equal(t, c.ID, got.CustomerID)
		}
	}},
	{"cancel incomplete subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)

		canceled, err := b.Subscriptions().Cancel(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, canceled.ID)
		assert.Equal(t, billing.StatusIncompleteExpired, canceled.Status)
		requireStatus(t, ctx, b, sub.ID, billing.StatusIncompleteExpired)
	}},
	{"pause incomplete subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)

		paused, err := b.Subscriptions().Pause(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, paused.ID)
		assert.Equal(t, billing.StatusIncomplete, paused.Status)
		requireStatus(t, ctx, b, sub.ID, billing.StatusIncomplete)
	}},
	{"resume incomplete subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)
		_, err := b.Subscriptions().Pause(ctx, sub.ID)
		require.NoError(t, err)

		resumed, err := b.Subscriptions().Resume(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, resumed.ID)
		assert.Equal(t, billing.StatusIncomplete, resumed.Status)
		requireStatus(t, ctx, b, sub.ID, billing.StatusIncomplete)
	}},
	{"canceled subscription listed with status", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)
		_, err := b.Subscriptions().Cancel(ctx, sub.ID)
		require.NoError(t, err)

		subs, err := b.Subscriptions().List(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, sub.ID, subs[0].ID)
		assert.Equal(t, billing.StatusIncompleteExpired, subs[0].Status)
	}},
	{"incomplete transitions sequence", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)

		requireOp(t, ctx, b.Subscriptions().Pause, sub.ID, billing.StatusIncomplete)
		requireOp(t, ctx, b.Subscriptions().Resume, sub.ID, billing.StatusIncomplete)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusIncompleteExpired)
		requireStatus(t, ctx, b, sub.ID, billing.StatusIncompleteExpired)
	}},
	{"setup payments marks customer ready", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		require.NoError(t, b.Customers().SetupPayments(ctx, c.ID))

		got, err := b.Customers().Get(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, got.PaymentReady)
	}},
	{"ready customer subscription starts active", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := readyCustomer(t, ctx, b)
		sub := createSubscription(t, ctx, b, c.ID, 0)
		assert.Equal(t, billing.StatusActive, sub.Status)
		assert.Nil(t, sub.TrialEndsAt)
		requireStatus(t, ctx, b, sub.ID, billing.StatusActive)
	}},
	{"ready customer subscription with trial starts trialing", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := readyCustomer(t, ctx, b)
		before := time.Now()
		sub := createSubscription(t, ctx, b, c.ID, trialPeriod)
		assert.Equal(t, billing.StatusTrialing, sub.Status)
		require.NotNil(t, sub.TrialEndsAt)
		assert.True(t, sub.TrialEndsAt.After(before), "trial end %s must be in the future", sub.TrialEndsAt)

		got, err := b.Subscriptions().Get(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.StatusTrialing, got.Status)
		require.NotNil(t, got.TrialEndsAt)
		assert.WithinDuration(t, *sub.TrialEndsAt, *got.TrialEndsAt, time.Second)
	}},
	{"trial ignored without payment method", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, trialPeriod)
		assert.Equal(t, billing.StatusIncomplete, sub.Status)
		assert.Nil(t, sub.TrialEndsAt)
	}},
	{"active subscription lifecycle", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := readyCustomer(t, ctx, b)
		sub := createSubscription(t, ctx, b, c.ID, 0)

		requireOp(t, ctx, b.Subscriptions().Pause, sub.ID, billing.StatusPaused)
		requireStatus(t, ctx, b, sub.ID, billing.StatusPaused)
		requireOp(t, ctx, b.Subscriptions().Pause, sub.ID, billing.StatusPaused)
		requireOp(t, ctx, b.Subscriptions().Resume, sub.ID, billing.StatusActive)
		requireStatus(t, ctx, b, sub.ID, billing.StatusActive)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusCanceled)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusCanceled)

		subs, err := b.Subscriptions().List(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, billing.StatusCanceled, subs[0].Status)
	}},
	{"trialing subscription pause and resume", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := readyCustomer(t, ctx, b)
		sub := createSubscription(t, ctx, b, c.ID, trialPeriod)

		requireOp(t, ctx, b.Subscriptions().Pause, sub.ID, billing.StatusPaused)
		requireOp(t, ctx, b.Subscriptions().Resume, sub.ID, billing.StatusActive)
	}},
	{"cancel trialing subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := readyCustomer(t, ctx, b)
		sub := createSubscription(t, ctx, b, c.ID, trialPeriod)

		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusCanceled)
	}},
	{"cancel paused subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := readyCustomer(t, ctx, b)
		sub := createSubscription(t, ctx, b, c.ID, 0)

		requireOp(t, ctx, b.Subscriptions().Pause, sub.ID, billing.StatusPaused)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusCanceled)
	}},
	{"invalid requests rejected", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		_, err := b.Customers().Create(ctx, billing.NewCustomer{Email: " "})
		assert.ErrorIs(t, err, billing.ErrInvalidInput)

		_, err = b.Subscriptions().Create(ctx, billing.NewSubscription{})
		assert.ErrorIs(t, err, billing.ErrInvalidInput)

		c := createCustomer(t, ctx, b, "test@example.com")
		_, err = b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: c.ID, TrialPeriod: -time.Hour})
		assert.ErrorIs(t, err, billing.ErrInvalidInput)

		_, err = b.Sessions().CreateSubscriptionSession(ctx, billing.NewSubscriptionSession{CustomerID: c.ID, SuccessURL: "not-a-url"})
		assert.ErrorIs(t, err, billing.ErrInvalidInput)

		_, err = b.Sessions().CreateManagementSession(ctx, billing.NewManagementSession{CustomerID: c.ID})
		assert.ErrorIs(t, err, billing.ErrInvalidInput)

		customers, err := b.Customers().List(ctx)
		require.NoError(t, err)
		assert.Len(t, customers, 1)
	}},
	{"subscription sessions are unique", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		req := billing.NewSubscriptionSession{CustomerID: c.ID, SuccessURL: "https://example.com/success"}

		first, err := b.Sessions().CreateSubscriptionSession(ctx, req)
		require.NoError(t, err)
		req.TrialPeriod = trialPeriod
		second, err := b.Sessions().CreateSubscriptionSession(ctx, req)
		require.NoError(t, err)

		assert.NotEmpty(t, first)
		assert.NotEmpty(t, second)
		assert.NotEqual(t, first, second)
	}},
	{"management sessions are unique", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		req := billing.NewManagementSession{CustomerID: c.ID, ReturnURL: "https://example.com/account"}

		first, err := b.Sessions().CreateManagementSession(ctx, req)
		require.NoError(t, err)
		second, err := b.Sessions().CreateManagementSession(ctx, req)
		require.NoError(t, err)

		assert.NotEmpty(t, first)
		assert.NotEmpty(t, second)
		assert.NotEqual(t, first, second)
	}},
	{"sessions for missing customer", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		_, err := b.Sessions().CreateSubscriptionSession(ctx, billing.NewSubscriptionSession{
			CustomerID: missingID,
			SuccessURL: "https://example.com/success",
		})
		requireNotFound(t, err, billing.KindCustomer, missingID)

		_, err = b.Sessions().CreateManagementSession(ctx, billing.NewManagementSession{
			CustomerID: missingID,
			ReturnURL:  "https://example.com/account",
		})
		requireNotFound(t, err, billing.KindCustomer, missingID)
	}},
}

// terminalCases move subscriptions out of canceled and incomplete_expired.
var terminalCases = []testCase{
	{"cancel expired subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)

		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusIncompleteExpired)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusCanceled)
		requireStatus(t, ctx, b, sub.ID, billing.StatusCanceled)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusCanceled)
	}},
	{"pause expired subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusIncompleteExpired)

		requireOp(t, ctx, b.Subscriptions().Pause, sub.ID, billing.StatusPaused)
		requireStatus(t, ctx, b, sub.ID, billing.StatusPaused)
	}},
	{"resume expired subscription", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := createCustomer(t, ctx, b, "test@example.com")
		sub := createSubscription(t, ctx, b, c.ID, 0)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusIncompleteExpired)

		requireOp(t, ctx, b.Subscriptions().Resume, sub.ID, billing.StatusActive)
		requireStatus(t, ctx, b, sub.ID, billing.StatusActive)
	}},
	{"canceled subscription pause and resume", func(t *testing.T, ctx context.Context, b *billing.Billing) {
		c := readyCustomer(t, ctx, b)
		sub := createSubscription(t, ctx, b, c.ID, 0)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusCanceled)

		requireOp(t, ctx, b.Subscriptions().Resume, sub.ID, billing.StatusActive)
		requireStatus(t, ctx, b, sub.ID, billing.StatusActive)
		requireOp(t, ctx, b.Subscriptions().Cancel, sub.ID, billing.StatusCanceled)
		requireOp(t, ctx, b.Subscriptions().Pause, sub.ID, billing.StatusPaused)
		requireStatus(t, ctx, b, sub.ID, billing.StatusPaused)
	}},
}
