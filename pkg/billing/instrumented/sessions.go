package instrumented

import (
	"context"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

type sessions struct {
	next billing.Sessions
	rec  *recorder
}

func (s *sessions) CreateSubscriptionSession(ctx context.Context, req billing.NewSubscriptionSession) (string, error) {
	start := s.rec.now()
	url, err := s.next.CreateSubscriptionSession(ctx, req)
	s.rec.observe(ctx, "sessions.checkout", start, err, logger.CustomerID(req.CustomerID))
	return url, err
}

func (s *sessions) CreateManagementSession(ctx context.Context, req billing.NewManagementSession) (string, error) {
	start := s.rec.now()
	url, err := s.next.CreateManagementSession(ctx, req)
	s.rec.observe(ctx, "sessions.portal", start, err, logger.CustomerID(req.CustomerID))
	return url, err
}
