// Package memory implements billing contracts in process memory.
//
// State lives for the lifetime of the process. Each store is guarded by its
// own sync.RWMutex and is safe for concurrent use.
package memory

import "github.com/dmitrymomot/paykit/pkg/billing"

// New creates an in-memory billing backend. Subscriptions and sessions are
// bound to the backend's own customer store.
func New(opts ...Option) *billing.Billing {
	o := applyOptions(opts)
	customers := newCustomers(o)
	return billing.New(
		customers,
		newSubscriptions(customers, o),
		newSessions(customers, o),
	)
}
