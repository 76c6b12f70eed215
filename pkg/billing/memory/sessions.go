package memory

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

// Sessions issues synthetic checkout and portal URLs. When bound to a
// customer store, sessions for unknown customers fail with NotFound.
type Sessions struct {
	customers   billing.Customers
	checkoutURL string
	portalURL   string
	newID       func() string
	logger      *slog.Logger
}

var _ billing.Sessions = (*Sessions)(nil)

// NewSessions creates a session issuer. customers may be nil, in which case
// customer ids are not checked.
func NewSessions(customers billing.Customers, opts ...Option) *Sessions {
	return newSessions(customers, applyOptions(opts))
}

func newSessions(customers billing.Customers, o *options) *Sessions {
	return &Sessions{
		customers:   customers,
		checkoutURL: o.checkoutURL,
		portalURL:   o.portalURL,
		newID:       o.newID,
		logger:      o.logger,
	}
}

func (s *Sessions) CreateSubscriptionSession(ctx context.Context, req billing.NewSubscriptionSession) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return "", err
	}

	url := s.checkoutURL + "/" + s.newID()
	s.logger.DebugContext(ctx, "checkout session created", logger.CustomerID(req.CustomerID))
	return url, nil
}

func (s *Sessions) CreateManagementSession(ctx context.Context, req billing.NewManagementSession) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return "", err
	}

	url := s.portalURL + "/" + s.newID()
	s.logger.DebugContext(ctx, "portal session created", logger.CustomerID(req.CustomerID))
	return url, nil
}

func (s *Sessions) checkCustomer(ctx context.Context, id string) error {
	if s.customers == nil {
		return nil
	}
	_, err := s.customers.Get(ctx, id)
	return err
}
