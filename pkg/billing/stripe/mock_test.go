package stripe

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v84"
)

type mockAPI struct {
	mock.Mock
}

var _ API = (*mockAPI)(nil)

func (m *mockAPI) CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	args := m.Called(ctx, params)
	c, _ := args.Get(0).(*stripe.Customer)
	return c, args.Error(1)
}

func (m *mockAPI) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*stripe.Customer)
	return c, args.Error(1)
}

func (m *mockAPI) UpdateCustomer(ctx context.Context, id string, params *stripe.CustomerParams) (*stripe.Customer, error) {
	args := m.Called(ctx, id, params)
	c, _ := args.Get(0).(*stripe.Customer)
	return c, args.Error(1)
}

func (m *mockAPI) DeleteCustomer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAPI) ListCustomers(ctx context.Context) ([]*stripe.Customer, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*stripe.Customer)
	return list, args.Error(1)
}

func (m *mockAPI) CreatePaymentMethod(ctx context.Context, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error) {
	args := m.Called(ctx, params)
	pm, _ := args.Get(0).(*stripe.PaymentMethod)
	return pm, args.Error(1)
}

func (m *mockAPI) AttachPaymentMethod(ctx context.Context, id string, params *stripe.PaymentMethodAttachParams) (*stripe.PaymentMethod, error) {
	args := m.Called(ctx, id, params)
	pm, _ := args.Get(0).(*stripe.PaymentMethod)
	return pm, args.Error(1)
}

func (m *mockAPI) CreateSubscription(ctx context.Context, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	args := m.Called(ctx, params)
	s, _ := args.Get(0).(*stripe.Subscription)
	return s, args.Error(1)
}

func (m *mockAPI) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*stripe.Subscription)
	return s, args.Error(1)
}

func (m *mockAPI) UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	args := m.Called(ctx, id, params)
	s, _ := args.Get(0).(*stripe.Subscription)
	return s, args.Error(1)
}

func (m *mockAPI) CancelSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*stripe.Subscription)
	return s, args.Error(1)
}

func (m *mockAPI) ResumeSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*stripe.Subscription)
	return s, args.Error(1)
}

func (m *mockAPI) ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error) {
	args := m.Called(ctx, customerID)
	list, _ := args.Get(0).([]*stripe.Subscription)
	return list, args.Error(1)
}

func (m *mockAPI) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, params)
	s, _ := args.Get(0).(*stripe.CheckoutSession)
	return s, args.Error(1)
}

func (m *mockAPI) CreatePortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	args := m.Called(ctx, params)
	s, _ := args.Get(0).(*stripe.BillingPortalSession)
	return s, args.Error(1)
}
