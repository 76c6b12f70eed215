package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

// Subscriptions is a map-backed billing.Subscriptions. It reads payment
// readiness from the bound customer store at creation time.
type Subscriptions struct {
	mu         sync.RWMutex
	subs       map[string]billing.Subscription
	byCustomer map[string][]string

	customers billing.Customers
	lifecycle *billing.Lifecycle
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

var _ billing.Subscriptions = (*Subscriptions)(nil)

// NewSubscriptions creates a subscription store bound to customers.
// It panics if customers is nil.
func NewSubscriptions(customers billing.Customers, opts ...Option) *Subscriptions {
	return newSubscriptions(customers, applyOptions(opts))
}

func newSubscriptions(customers billing.Customers, o *options) *Subscriptions {
	if customers == nil {
		panic("memory: customers cannot be nil")
	}
	return &Subscriptions{
		subs:       make(map[string]billing.Subscription),
		byCustomer: make(map[string][]string),
		customers:  customers,
		lifecycle:  o.lifecycle,
		now:        o.now,
		newID:      o.newID,
		logger:     o.logger,
	}
}

// List returns the customer's subscriptions in creation order. Subscriptions
// of deleted customers remain listable by the old customer id.
func (s *Subscriptions) List(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byCustomer[customerID]
	out := make([]billing.Subscription, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(s.subs[id]))
	}
	return out, nil
}

func (s *Subscriptions) Get(ctx context.Context, id string) (billing.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return billing.Subscription{}, billing.NotFound(billing.KindSubscription, id)
	}
	return clone(sub), nil
}

func (s *Subscriptions) Create(ctx context.Context, req billing.NewSubscription) (billing.Subscription, error) {
	if err := req.Validate(); err != nil {
		return billing.Subscription{}, err
	}

	customer, err := s.customers.Get(ctx, req.CustomerID)
	if err != nil {
		return billing.Subscription{}, err
	}

	sub := billing.Subscription{
		ID:         s.newID(),
		CustomerID: customer.ID,
		Status:     s.lifecycle.Initial(ctx, customer.PaymentReady, req.TrialPeriod),
	}
	if sub.Status == billing.StatusTrialing {
		end := s.now().Add(req.TrialPeriod).UTC()
		sub.TrialEndsAt = &end
	}

	s.mu.Lock()
	s.subs[sub.ID] = sub
	s.byCustomer[sub.CustomerID] = append(s.byCustomer[sub.CustomerID], sub.ID)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "subscription created",
		logger.CustomerID(sub.CustomerID),
		logger.SubscriptionID(sub.ID),
		logger.Status(sub.Status.String()),
	)
	return clone(sub), nil
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

func (s *Subscriptions) transition(ctx context.Context, id string, op billing.Operation) (billing.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return billing.Subscription{}, billing.NotFound(billing.KindSubscription, id)
	}

	next, err := s.lifecycle.Apply(ctx, sub, op)
	if err != nil {
		return billing.Subscription{}, err
	}
	s.subs[id] = next

	s.logger.DebugContext(ctx, "subscription transitioned",
		logger.SubscriptionID(id),
		logger.Operation(op.String()),
		slog.String("from", sub.Status.String()),
		logger.Status(next.Status.String()),
	)
	return clone(next), nil
}

func clone(sub billing.Subscription) billing.Subscription {
	if sub.TrialEndsAt != nil {
		end := *sub.TrialEndsAt
		sub.TrialEndsAt = &end
	}
	return sub
}
