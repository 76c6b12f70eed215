package stripe

import (
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/dmitrymomot/paykit/pkg/billing"
)

func toCustomer(c *stripe.Customer) billing.Customer {
	return billing.Customer{
		ID:           c.ID,
		Email:        c.Email,
		PaymentReady: hasDefaultPaymentMethod(c),
	}
}

func hasDefaultPaymentMethod(c *stripe.Customer) bool {
	return c.InvoiceSettings != nil &&
		c.InvoiceSettings.DefaultPaymentMethod != nil &&
		c.InvoiceSettings.DefaultPaymentMethod.ID != ""
}

// toSubscription maps a Stripe subscription. Collecting subscriptions with
// pause_collection set are reported as paused.
func toSubscription(s *stripe.Subscription) (billing.Subscription, error) {
	status, err := billing.ParseStatus(string(s.Status))
	if err != nil {
		return billing.Subscription{}, err
	}
	if isPauseCollecting(s) && status.IsCollecting() {
		status = billing.StatusPaused
	}

	sub := billing.Subscription{
		ID:     s.ID,
		Status: status,
	}
	if s.Customer != nil {
		sub.CustomerID = s.Customer.ID
	}
	if s.TrialEnd > 0 {
		end := time.Unix(s.TrialEnd, 0).UTC()
		sub.TrialEndsAt = &end
	}
	return sub, nil
}

func isPauseCollecting(s *stripe.Subscription) bool {
	return s.PauseCollection != nil && s.PauseCollection.Behavior != ""
}
