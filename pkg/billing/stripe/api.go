package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	portalsession "github.com/stripe/stripe-go/v84/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/paymentmethod"
	"github.com/stripe/stripe-go/v84/subscription"
	"golang.org/x/time/rate"
)

// API is the subset of the Stripe API the adapter calls.
// NewAPI returns the SDK-backed implementation.
type API interface {
	CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error)
	GetCustomer(ctx context.Context, id string) (*stripe.Customer, error)
	UpdateCustomer(ctx context.Context, id string, params *stripe.CustomerParams) (*stripe.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context) ([]*stripe.Customer, error)

	CreatePaymentMethod(ctx context.Context, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error)
	AttachPaymentMethod(ctx context.Context, id string, params *stripe.PaymentMethodAttachParams) (*stripe.PaymentMethod, error)

	CreateSubscription(ctx context.Context, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	CancelSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	ResumeSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error)

	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
}

const listPageSize = 100

type sdkAPI struct {
	customers      customer.Client
	subscriptions  subscription.Client
	paymentMethods paymentmethod.Client
	checkout       checkoutsession.Client
	portal         portalsession.Client
	limiter        *rate.Limiter
}

// NewAPI creates an API backed by stripe-go using cfg.APIKey. Requests are
// paced by a token bucket when cfg.RateLimit is positive.
func NewAPI(cfg Config) API {
	backend := stripe.GetBackend(stripe.APIBackend)

	api := &sdkAPI{
		customers:      customer.Client{B: backend, Key: cfg.APIKey},
		subscriptions:  subscription.Client{B: backend, Key: cfg.APIKey},
		paymentMethods: paymentmethod.Client{B: backend, Key: cfg.APIKey},
		checkout:       checkoutsession.Client{B: backend, Key: cfg.APIKey},
		portal:         portalsession.Client{B: backend, Key: cfg.APIKey},
	}
	if cfg.RateLimit > 0 {
		burst := max(cfg.RateBurst, 1)
		api.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return api
}

func (a *sdkAPI) wait(ctx context.Context) error {
	if a.limiter == nil {
		return nil
	}
	return a.limiter.Wait(ctx)
}

func (a *sdkAPI) CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params.Context = ctx
	return a.customers.New(params)
}

func (a *sdkAPI) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{}
	params.Context = ctx
	params.AddExpand("invoice_settings.default_payment_method")
	return a.customers.Get(id, params)
}

func (a *sdkAPI) UpdateCustomer(ctx context.Context, id string, params *stripe.CustomerParams) (*stripe.Customer, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params.Context = ctx
	return a.customers.Update(id, params)
}

func (a *sdkAPI) DeleteCustomer(ctx context.Context, id string) error {
	if err := a.wait(ctx); err != nil {
		return err
	}
	params := &stripe.CustomerParams{}
	params.Context = ctx
	_, err := a.customers.Del(id, params)
	return err
}

// ListCustomers walks every page of customers. Each page request waits on
// the limiter.
func (a *sdkAPI) ListCustomers(ctx context.Context) ([]*stripe.Customer, error) {
	params := &stripe.CustomerListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(listPageSize)
	params.Single = true

	var out []*stripe.Customer
	for {
		if err := a.wait(ctx); err != nil {
			return nil, err
		}
		iter := a.customers.List(params)
		n := 0
		for iter.Next() {
			out = append(out, iter.Customer())
			n++
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		if n == 0 || !iter.Meta().HasMore {
			return out, nil
		}
		params.StartingAfter = stripe.String(out[len(out)-1].ID)
	}
}

func (a *sdkAPI) CreatePaymentMethod(ctx context.Context, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params.Context = ctx
	return a.paymentMethods.New(params)
}

func (a *sdkAPI) AttachPaymentMethod(ctx context.Context, id string, params *stripe.PaymentMethodAttachParams) (*stripe.PaymentMethod, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params.Context = ctx
	return a.paymentMethods.Attach(id, params)
}

func (a *sdkAPI) CreateSubscription(ctx context.Context, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params.Context = ctx
	return a.subscriptions.New(params)
}

func (a *sdkAPI) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	return a.subscriptions.Get(id, params)
}

func (a *sdkAPI) UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params.Context = ctx
	return a.subscriptions.Update(id, params)
}

func (a *sdkAPI) CancelSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	return a.subscriptions.Cancel(id, params)
}

func (a *sdkAPI) ResumeSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params := &stripe.SubscriptionResumeParams{}
	params.Context = ctx
	return a.subscriptions.Resume(id, params)
}

// ListSubscriptions walks every page of the customer's subscriptions,
// canceled ones included. Each page request waits on the limiter.
func (a *sdkAPI) ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(listPageSize)
	params.Single = true

	var out []*stripe.Subscription
	for {
		if err := a.wait(ctx); err != nil {
			return nil, err
		}
		iter := a.subscriptions.List(params)
		n := 0
		for iter.Next() {
			out = append(out, iter.Subscription())
			n++
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		if n == 0 || !iter.Meta().HasMore {
			return out, nil
		}
		params.StartingAfter = stripe.String(out[len(out)-1].ID)
	}
}

func (a *sdkAPI) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params.Context = ctx
	return a.checkout.New(params)
}

func (a *sdkAPI) CreatePortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	params.Context = ctx
	return a.portal.New(params)
}
