// Package billing defines backend-agnostic contracts for customer management,
// subscription lifecycle and hosted checkout/portal sessions.
//
// A backend supplies three capabilities, grouped by the Billing facade:
//
//   - Customers: create, look up and delete customers, and attach a payment method
//   - Subscriptions: create subscriptions and move them through the lifecycle
//   - Sessions: issue redirect URLs for checkout and self-service management
//
// Backends live in subpackages (memory, stripe, redisstore, postgres) and all
// pass the contract suite in billingtest.
//
// # Lifecycle
//
// A new subscription starts in one of three statuses, decided by the
// customer's payment readiness and the requested trial:
//
//	payment ready  trial  status
//	no             any    incomplete
//	yes            none   active
//	yes            > 0    trialing
//
// Cancel moves incomplete subscriptions to incomplete_expired and every other
// status to canceled. Pause and resume are no-ops on incomplete subscriptions;
// from any other status pause yields paused and resume yields active.
// ErrInvalidState is reserved for statuses the lifecycle does not know.
//
//	b := memory.New()
//	c, _ := b.Customers().Create(ctx, billing.NewCustomer{Email: "jane@example.com"})
//	_ = b.Customers().SetupPayments(ctx, c.ID)
//	sub, _ := b.Subscriptions().Create(ctx, billing.NewSubscription{CustomerID: c.ID})
//	// sub.Status == billing.StatusActive
//
// # Errors
//
// Lookups of unknown ids fail with a *NotFoundError matching ErrNotFound.
// Use IsNotFound to branch on the entity kind:
//
//	if billing.IsNotFound(err, billing.KindSubscription) {
//		// ...
//	}
//
// Invalid requests fail with ErrInvalidInput joined with
// validator.ValidationErrors. Provider statuses outside the known vocabulary
// fail with ErrUnknownStatus rather than being coerced.
package billing
