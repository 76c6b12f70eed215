package stripe

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v84"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

// Sessions issues Stripe Checkout and Billing Portal sessions.
type Sessions struct {
	client *client
}

var _ billing.Sessions = (*Sessions)(nil)

// CreateSubscriptionSession creates a subscription-mode checkout session
// for the configured price.
func (s *Sessions) CreateSubscriptionSession(ctx context.Context, req billing.NewSubscriptionSession) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if _, err := s.client.getCustomer(ctx, req.CustomerID); err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(req.CustomerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(req.SuccessURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.client.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.TrialPeriod > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			TrialEnd: stripe.Int64(s.client.now().Add(req.TrialPeriod).Unix()),
		}
	}

	session, err := s.client.api.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", mapError(err, billing.KindCustomer, req.CustomerID)
	}
	if session.URL == "" {
		return "", errors.Join(billing.ErrProvider, ErrEmptyURL)
	}

	s.client.logger.DebugContext(ctx, "checkout session created", logger.CustomerID(req.CustomerID))
	return session.URL, nil
}

func (s *Sessions) CreateManagementSession(ctx context.Context, req billing.NewManagementSession) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if _, err := s.client.getCustomer(ctx, req.CustomerID); err != nil {
		return "", err
	}

	session, err := s.client.api.CreatePortalSession(ctx, &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(req.CustomerID),
		ReturnURL: stripe.String(req.ReturnURL),
	})
	if err != nil {
		return "", mapError(err, billing.KindCustomer, req.CustomerID)
	}
	if session.URL == "" {
		return "", errors.Join(billing.ErrProvider, ErrEmptyURL)
	}

	s.client.logger.DebugContext(ctx, "portal session created", logger.CustomerID(req.CustomerID))
	return session.URL, nil
}
