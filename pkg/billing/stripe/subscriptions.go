package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v84"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

const (
	paymentBehaviorDefaultIncomplete = "default_incomplete"
	paymentBehaviorAllowIncomplete   = "allow_incomplete"
	pauseBehaviorVoid                = "void"
)

// Subscriptions implements billing.Subscriptions on Stripe subscriptions
// for the configured price.
type Subscriptions struct {
	client *client
}

var _ billing.Subscriptions = (*Subscriptions)(nil)

func (s *Subscriptions) List(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	list, err := s.client.api.ListSubscriptions(ctx, customerID)
	if err != nil {
		return nil, mapError(err, billing.KindCustomer, customerID)
	}

	out := make([]billing.Subscription, 0, len(list))
	for _, raw := range list {
		sub, err := toSubscription(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *Subscriptions) Get(ctx context.Context, id string) (billing.Subscription, error) {
	raw, err := s.getRaw(ctx, id)
	if err != nil {
		return billing.Subscription{}, err
	}
	return toSubscription(raw)
}

// Create starts a subscription for the configured price. Customers without
// a default payment method get a default_incomplete subscription, and their
// trial request is dropped.
func (s *Subscriptions) Create(ctx context.Context, req billing.NewSubscription) (billing.Subscription, error) {
	if err := req.Validate(); err != nil {
		return billing.Subscription{}, err
	}

	customer, err := s.client.getCustomer(ctx, req.CustomerID)
	if err != nil {
		return billing.Subscription{}, err
	}
	ready := hasDefaultPaymentMethod(customer)

	params := &stripe.SubscriptionParams{
		Customer:         stripe.String(customer.ID),
		CollectionMethod: stripe.String(string(stripe.SubscriptionCollectionMethodChargeAutomatically)),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(s.client.cfg.PriceID)},
		},
	}
	if ready {
		params.PaymentBehavior = stripe.String(paymentBehaviorAllowIncomplete)
	} else {
		params.PaymentBehavior = stripe.String(paymentBehaviorDefaultIncomplete)
	}
	if s.client.lifecycle.Initial(ctx, ready, req.TrialPeriod) == billing.StatusTrialing {
		params.TrialEnd = stripe.Int64(s.client.now().Add(req.TrialPeriod).Unix())
	}

	raw, err := s.client.api.CreateSubscription(ctx, params)
	if err != nil {
		return billing.Subscription{}, mapError(err, billing.KindCustomer, req.CustomerID)
	}

	sub, err := toSubscription(raw)
	if err != nil {
		return billing.Subscription{}, err
	}
	s.client.logger.DebugContext(ctx, "subscription created",
		logger.CustomerID(sub.CustomerID),
		logger.SubscriptionID(sub.ID),
		logger.Status(sub.Status.String()),
	)
	return sub, nil
}

func (s *Subscriptions) Cancel(ctx context.Context, id string) (billing.Subscription, error) {
	return s.transition(ctx, id, billing.OpCancel)
}

func (s *Subscriptions) Pause(ctx context.Context, id string) (billing.Subscription, error) {
	return s.transition(ctx, id, billing.OpPause)
}

func (s *Subscriptions) Resume(ctx context.Context, id string) (billing.Subscription, error) {
	return s.transition(ctx, id, billing.OpResume)
}

// transition checks op against the lifecycle before calling Stripe. No-op
// transitions return the current state without a provider call. Stripe
// refuses any change to a canceled or expired subscription, so those fail
// with ErrSubscriptionEnded joined with billing.ErrProvider.
func (s *Subscriptions) transition(ctx context.Context, id string, op billing.Operation) (billing.Subscription, error) {
	raw, err := s.getRaw(ctx, id)
	if err != nil {
		return billing.Subscription{}, err
	}
	current, err := toSubscription(raw)
	if err != nil {
		return billing.Subscription{}, err
	}

	if _, err := s.client.lifecycle.Apply(ctx, current, op); err != nil {
		return billing.Subscription{}, err
	}
	if s.client.lifecycle.IsNoop(ctx, current.Status, op) {
		return current, nil
	}
	if current.Status.IsTerminal() {
		return billing.Subscription{}, errors.Join(billing.ErrProvider,
			fmt.Errorf("%w: cannot %s subscription '%s' in status '%s'", ErrSubscriptionEnded, op, id, current.Status))
	}

	var updated *stripe.Subscription
	switch op {
	case billing.OpCancel:
		updated, err = s.client.api.CancelSubscription(ctx, id)
	case billing.OpPause:
		updated, err = s.client.api.UpdateSubscription(ctx, id, &stripe.SubscriptionParams{
			PauseCollection: &stripe.SubscriptionPauseCollectionParams{
				Behavior: stripe.String(pauseBehaviorVoid),
			},
		})
	case billing.OpResume:
		if raw.Status == stripe.SubscriptionStatusPaused {
			updated, err = s.client.api.ResumeSubscription(ctx, id)
			break
		}
		params := &stripe.SubscriptionParams{}
		params.AddExtra("pause_collection", "")
		if raw.Status == stripe.SubscriptionStatusTrialing {
			params.TrialEndNow = stripe.Bool(true)
		}
		updated, err = s.client.api.UpdateSubscription(ctx, id, params)
	}
	if err != nil {
		return billing.Subscription{}, mapError(err, billing.KindSubscription, id)
	}

	next, err := toSubscription(updated)
	if err != nil {
		return billing.Subscription{}, err
	}
	s.client.logger.DebugContext(ctx, "subscription transitioned",
		logger.SubscriptionID(id),
		logger.Operation(op.String()),
		slog.String("from", current.Status.String()),
		logger.Status(next.Status.String()),
	)
	return next, nil
}

func (s *Subscriptions) getRaw(ctx context.Context, id string) (*stripe.Subscription, error) {
	if id == "" {
		return nil, billing.NotFound(billing.KindSubscription, id)
	}
	raw, err := s.client.api.GetSubscription(ctx, id)
	if err != nil {
		return nil, mapError(err, billing.KindSubscription, id)
	}
	return raw, nil
}
