package billing

import "context"

// Customers manages billable parties and their payment readiness.
type Customers interface {
	List(ctx context.Context) ([]Customer, error)
	Get(ctx context.Context, id string) (Customer, error)
	Create(ctx context.Context, req NewCustomer) (Customer, error)
	Delete(ctx context.Context, id string) error
	// SetupPayments attaches a usable payment method to the customer.
	SetupPayments(ctx context.Context, id string) error
}

// Subscriptions manages subscription lifecycle.
// Every implementation moves subscriptions through the same Lifecycle.
type Subscriptions interface {
	List(ctx context.Context, customerID string) ([]Subscription, error)
	Get(ctx context.Context, id string) (Subscription, error)
	Create(ctx context.Context, req NewSubscription) (Subscription, error)
	Cancel(ctx context.Context, id string) (Subscription, error)
	Pause(ctx context.Context, id string) (Subscription, error)
	Resume(ctx context.Context, id string) (Subscription, error)
}

// Sessions issues hosted checkout and self-service portal redirect URLs.
type Sessions interface {
	CreateSubscriptionSession(ctx context.Context, req NewSubscriptionSession) (string, error)
	CreateManagementSession(ctx context.Context, req NewManagementSession) (string, error)
}

// Billing groups the three capabilities a backend provides.
// It is immutable and has no behavior of its own.
type Billing struct {
	customers     Customers
	subscriptions Subscriptions
	sessions      Sessions
}

// New creates a Billing facade. It panics if any capability is nil.
func New(customers Customers, subscriptions Subscriptions, sessions Sessions) *Billing {
	if customers == nil {
		panic("billing: customers cannot be nil")
	}
	if subscriptions == nil {
		panic("billing: subscriptions cannot be nil")
	}
	if sessions == nil {
		panic("billing: sessions cannot be nil")
	}

	return &Billing{
		customers:     customers,
		subscriptions: subscriptions,
		sessions:      sessions,
	}
}

func (b *Billing) Customers() Customers         { return b.customers }
func (b *Billing) Subscriptions() Subscriptions { return b.subscriptions }
func (b *Billing) Sessions() Sessions           { return b.sessions }
