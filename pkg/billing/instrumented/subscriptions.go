package instrumented

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

type subscriptions struct {
	next billing.Subscriptions
	rec  *recorder
}

func (s *subscriptions) List(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	start := s.rec.now()
	out, err := s.next.List(ctx, customerID)
	s.rec.observe(ctx, "subscriptions.list", start, err,
		logger.CustomerID(customerID),
		slog.Int("count", len(out)),
	)
	return out, err
}

func (s *subscriptions) Get(ctx context.Context, id string) (billing.Subscription, error) {
	start := s.rec.now()
	out, err := s.next.Get(ctx, id)
	s.rec.observe(ctx, "subscriptions.get", start, err, logger.SubscriptionID(id))
	return out, err
}

func (s *subscriptions) Create(ctx context.Context, req billing.NewSubscription) (billing.Subscription, error) {
	return s.record(ctx, "subscriptions.create", "", func() (billing.Subscription, error) {
		return s.next.Create(ctx, req)
	}, logger.CustomerID(req.CustomerID))
}

func (s *subscriptions) Cancel(ctx context.Context, id string) (billing.Subscription, error) {
	return s.record(ctx, "subscriptions.cancel", id, func() (billing.Subscription, error) {
		return s.next.Cancel(ctx, id)
	})
}

func (s *subscriptions) Pause(ctx context.Context, id string) (billing.Subscription, error) {
	return s.record(ctx, "subscriptions.pause", id, func() (billing.Subscription, error) {
		return s.next.Pause(ctx, id)
	})
}

func (s *subscriptions) Resume(ctx context.Context, id string) (billing.Subscription, error) {
	return s.record(ctx, "subscriptions.resume", id, func() (billing.Subscription, error) {
		return s.next.Resume(ctx, id)
	})
}

// record runs a status-producing call and counts the resulting status.
func (s *subscriptions) record(ctx context.Context, op, id string, call func() (billing.Subscription, error), attrs ...slog.Attr) (billing.Subscription, error) {
	start := s.rec.now()
	out, err := call()
	if err == nil {
		s.rec.status(op, out)
		if id == "" {
			id = out.ID
		}
		attrs = append(attrs, logger.Status(out.Status.String()))
	}
	attrs = append(attrs, logger.SubscriptionID(id))
	s.rec.observe(ctx, op, start, err, attrs...)
	return out, err
}
