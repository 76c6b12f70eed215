package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

// Customers implements billing.Customers on Stripe customers. Payment
// readiness is the presence of an invoice default payment method.
type Customers struct {
	client *client
}

var _ billing.Customers = (*Customers)(nil)

func (s *Customers) List(ctx context.Context) ([]billing.Customer, error) {
	list, err := s.client.api.ListCustomers(ctx)
	if err != nil {
		return nil, mapError(err, billing.KindCustomer, "")
	}

	out := make([]billing.Customer, 0, len(list))
	for _, c := range list {
		if c.Deleted {
			continue
		}
		out = append(out, toCustomer(c))
	}
	return out, nil
}

func (s *Customers) Get(ctx context.Context, id string) (billing.Customer, error) {
	c, err := s.client.getCustomer(ctx, id)
	if err != nil {
		return billing.Customer{}, err
	}
	return toCustomer(c), nil
}

func (s *Customers) Create(ctx context.Context, req billing.NewCustomer) (billing.Customer, error) {
	if err := req.Validate(); err != nil {
		return billing.Customer{}, err
	}

	c, err := s.client.api.CreateCustomer(ctx, &stripe.CustomerParams{
		Email: stripe.String(req.Email),
	})
	if err != nil {
		return billing.Customer{}, mapError(err, billing.KindCustomer, "")
	}

	s.client.logger.DebugContext(ctx, "customer created", logger.CustomerID(c.ID))
	return toCustomer(c), nil
}

func (s *Customers) Delete(ctx context.Context, id string) error {
	if id == "" {
		return billing.NotFound(billing.KindCustomer, id)
	}
	if err := s.client.api.DeleteCustomer(ctx, id); err != nil {
		return mapError(err, billing.KindCustomer, id)
	}

	s.client.logger.DebugContext(ctx, "customer deleted", logger.CustomerID(id))
	return nil
}

// SetupPayments creates a card payment method from the configured token,
// attaches it to the customer and makes it the invoice default.
func (s *Customers) SetupPayments(ctx context.Context, id string) error {
	if _, err := s.client.getCustomer(ctx, id); err != nil {
		return err
	}

	pm, err := s.client.api.CreatePaymentMethod(ctx, &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{
			Token: stripe.String(s.client.cfg.paymentToken()),
		},
	})
	if err != nil {
		return mapError(err, billing.KindCustomer, id)
	}

	if _, err := s.client.api.AttachPaymentMethod(ctx, pm.ID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(id),
	}); err != nil {
		return mapError(err, billing.KindCustomer, id)
	}

	if _, err := s.client.api.UpdateCustomer(ctx, id, &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(pm.ID),
		},
	}); err != nil {
		return mapError(err, billing.KindCustomer, id)
	}

	s.client.logger.DebugContext(ctx, "customer payment method attached", logger.CustomerID(id))
	return nil
}

// getCustomer fetches a customer, reporting soft-deleted ones as missing.
func (c *client) getCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	if id == "" {
		return nil, billing.NotFound(billing.KindCustomer, id)
	}
	customer, err := c.api.GetCustomer(ctx, id)
	if err != nil {
		return nil, mapError(err, billing.KindCustomer, id)
	}
	if customer.Deleted {
		return nil, billing.NotFound(billing.KindCustomer, id)
	}
	return customer, nil
}
