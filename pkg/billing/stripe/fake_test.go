package stripe

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v84"
)

// fakeAPI emulates the Stripe behavior the adapter relies on: soft-deleted
// customers, default_incomplete subscriptions, pause_collection and
// resource_missing errors for unknown ids.
type fakeAPI struct {
	mu sync.Mutex

	customers     map[string]*stripe.Customer
	customerOrder []string
	attached      map[string]string // payment method -> customer
	subscriptions map[string]*stripe.Subscription
	subOrder      []string
	calls         map[string]int
	seq           int
	now           func() time.Time
}

var _ API = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		customers:     make(map[string]*stripe.Customer),
		attached:      make(map[string]string),
		subscriptions: make(map[string]*stripe.Subscription),
		calls:         make(map[string]int),
		now:           time.Now,
	}
}

func (f *fakeAPI) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%06d", prefix, f.seq)
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func missing(kind, id string) error {
	return &stripe.Error{
		Type:           stripe.ErrorTypeInvalidRequest,
		Code:           stripe.ErrorCodeResourceMissing,
		HTTPStatusCode: http.StatusNotFound,
		Msg:            fmt.Sprintf("No such %s: '%s'", kind, id),
	}
}

func invalid(msg string) error {
	return &stripe.Error{
		Type:           stripe.ErrorTypeInvalidRequest,
		HTTPStatusCode: http.StatusBadRequest,
		Msg:            msg,
	}
}

func (f *fakeAPI) liveCustomer(id string) (*stripe.Customer, error) {
	c, ok := f.customers[id]
	if !ok || c.Deleted {
		return nil, missing("customer", id)
	}
	return c, nil
}

func copyCustomer(c *stripe.Customer) *stripe.Customer {
	out := *c
	if c.InvoiceSettings != nil {
		settings := *c.InvoiceSettings
		out.InvoiceSettings = &settings
	}
	return &out
}

func copySubscription(s *stripe.Subscription) *stripe.Subscription {
	out := *s
	if s.PauseCollection != nil {
		pc := *s.PauseCollection
		out.PauseCollection = &pc
	}
	return &out
}

func (f *fakeAPI) CreateCustomer(_ context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateCustomer"]++

	c := &stripe.Customer{ID: f.nextID("cus"), Email: stripe.StringValue(params.Email)}
	f.customers[c.ID] = c
	f.customerOrder = append(f.customerOrder, c.ID)
	return copyCustomer(c), nil
}

func (f *fakeAPI) GetCustomer(_ context.Context, id string) (*stripe.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetCustomer"]++

	c, ok := f.customers[id]
	if !ok {
		return nil, missing("customer", id)
	}
	if c.Deleted {
		return &stripe.Customer{ID: c.ID, Deleted: true}, nil
	}
	return copyCustomer(c), nil
}

func (f *fakeAPI) UpdateCustomer(_ context.Context, id string, params *stripe.CustomerParams) (*stripe.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateCustomer"]++

	c, err := f.liveCustomer(id)
	if err != nil {
		return nil, err
	}
	if params.InvoiceSettings != nil && params.InvoiceSettings.DefaultPaymentMethod != nil {
		pmID := *params.InvoiceSettings.DefaultPaymentMethod
		if f.attached[pmID] != id {
			return nil, invalid("payment method is not attached to this customer")
		}
		c.InvoiceSettings = &stripe.CustomerInvoiceSettings{
			DefaultPaymentMethod: &stripe.PaymentMethod{ID: pmID},
		}
	}
	return copyCustomer(c), nil
}

func (f *fakeAPI) DeleteCustomer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteCustomer"]++

	c, err := f.liveCustomer(id)
	if err != nil {
		return err
	}
	c.Deleted = true
	// Stripe cancels the subscriptions of deleted customers.
	for _, s := range f.subscriptions {
		if s.Customer.ID == id && s.Status != stripe.SubscriptionStatusCanceled {
			s.Status = stripe.SubscriptionStatusCanceled
		}
	}
	return nil
}

func (f *fakeAPI) ListCustomers(_ context.Context) ([]*stripe.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListCustomers"]++

	var out []*stripe.Customer
	for _, id := range slices.Backward(f.customerOrder) {
		if c := f.customers[id]; !c.Deleted {
			out = append(out, copyCustomer(c))
		}
	}
	return out, nil
}

func (f *fakeAPI) CreatePaymentMethod(_ context.Context, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreatePaymentMethod"]++

	if params.Card == nil || stripe.StringValue(params.Card.Token) == "" {
		return nil, invalid("card token is required")
	}
	return &stripe.PaymentMethod{ID: f.nextID("pm"), Type: stripe.PaymentMethodTypeCard}, nil
}

func (f *fakeAPI) AttachPaymentMethod(_ context.Context, id string, params *stripe.PaymentMethodAttachParams) (*stripe.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["AttachPaymentMethod"]++

	customerID := stripe.StringValue(params.Customer)
	if _, err := f.liveCustomer(customerID); err != nil {
		return nil, err
	}
	f.attached[id] = customerID
	return &stripe.PaymentMethod{ID: id, Customer: &stripe.Customer{ID: customerID}}, nil
}

func (f *fakeAPI) CreateSubscription(_ context.Context, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateSubscription"]++

	customerID := stripe.StringValue(params.Customer)
	c, err := f.liveCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if len(params.Items) != 1 || stripe.StringValue(params.Items[0].Price) == "" {
		return nil, invalid("exactly one price item is required")
	}

	s := &stripe.Subscription{
		ID:       f.nextID("sub"),
		Customer: &stripe.Customer{ID: customerID},
		Created:  f.now().Unix(),
		Status:   stripe.SubscriptionStatusIncomplete,
	}
	hasPM := c.InvoiceSettings != nil && c.InvoiceSettings.DefaultPaymentMethod != nil
	if stripe.StringValue(params.PaymentBehavior) != paymentBehaviorDefaultIncomplete && hasPM {
		s.Status = stripe.SubscriptionStatusActive
		if params.TrialEnd != nil {
			s.Status = stripe.SubscriptionStatusTrialing
			s.TrialEnd = *params.TrialEnd
		}
	}

	f.subscriptions[s.ID] = s
	f.subOrder = append(f.subOrder, s.ID)
	return copySubscription(s), nil
}

func (f *fakeAPI) GetSubscription(_ context.Context, id string) (*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetSubscription"]++

	s, ok := f.subscriptions[id]
	if !ok {
		return nil, missing("subscription", id)
	}
	return copySubscription(s), nil
}

func (f *fakeAPI) UpdateSubscription(_ context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateSubscription"]++

	s, ok := f.subscriptions[id]
	if !ok {
		return nil, missing("subscription", id)
	}
	if s.Status == stripe.SubscriptionStatusCanceled || s.Status == stripe.SubscriptionStatusIncompleteExpired {
		return nil, invalid("a canceled subscription can only update its cancellation_details")
	}

	if params.PauseCollection != nil {
		s.PauseCollection = &stripe.SubscriptionPauseCollection{
			Behavior: stripe.SubscriptionPauseCollectionBehavior(stripe.StringValue(params.PauseCollection.Behavior)),
		}
	}
	if params.Extra != nil && params.Extra.Has("pause_collection") {
		s.PauseCollection = nil
	}
	if stripe.BoolValue(params.TrialEndNow) && s.Status == stripe.SubscriptionStatusTrialing {
		s.Status = stripe.SubscriptionStatusActive
		s.TrialEnd = f.now().Unix()
	}
	return copySubscription(s), nil
}

func (f *fakeAPI) CancelSubscription(_ context.Context, id string) (*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CancelSubscription"]++

	s, ok := f.subscriptions[id]
	if !ok {
		return nil, missing("subscription", id)
	}
	switch s.Status {
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return nil, invalid("subscription is already canceled")
	case stripe.SubscriptionStatusIncomplete:
		s.Status = stripe.SubscriptionStatusIncompleteExpired
	default:
		s.Status = stripe.SubscriptionStatusCanceled
	}
	s.PauseCollection = nil
	return copySubscription(s), nil
}

func (f *fakeAPI) ResumeSubscription(_ context.Context, id string) (*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ResumeSubscription"]++

	s, ok := f.subscriptions[id]
	if !ok {
		return nil, missing("subscription", id)
	}
	if s.Status != stripe.SubscriptionStatusPaused {
		return nil, invalid("only paused subscriptions can be resumed")
	}
	s.Status = stripe.SubscriptionStatusActive
	return copySubscription(s), nil
}

func (f *fakeAPI) ListSubscriptions(_ context.Context, customerID string) ([]*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListSubscriptions"]++

	if _, ok := f.customers[customerID]; !ok {
		return nil, missing("customer", customerID)
	}
	var out []*stripe.Subscription
	for _, id := range slices.Backward(f.subOrder) {
		if s := f.subscriptions[id]; s.Customer.ID == customerID {
			out = append(out, copySubscription(s))
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateCheckoutSession"]++

	if _, err := f.liveCustomer(stripe.StringValue(params.Customer)); err != nil {
		return nil, err
	}
	id := f.nextID("cs_test")
	return &stripe.CheckoutSession{ID: id, URL: "https://checkout.stripe.com/c/pay/" + id}, nil
}

func (f *fakeAPI) CreatePortalSession(_ context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreatePortalSession"]++

	if _, err := f.liveCustomer(stripe.StringValue(params.Customer)); err != nil {
		return nil, err
	}
	id := f.nextID("bps")
	return &stripe.BillingPortalSession{ID: id, URL: "https://billing.stripe.com/p/session/" + id}, nil
}
