// Package paddle issues checkout and customer-portal sessions through Paddle
// Billing. It implements billing.Sessions only, so it is combined with a
// customer and subscription backend:
//
//	store := memory.NewCustomers()
//	sessions, err := paddle.New(cfg, paddle.WithCustomers(store))
//	if err != nil {
//		return err
//	}
//	b := billing.New(store, memory.NewSubscriptions(store), sessions)
//
// Checkout creates a transaction for the configured price and tags it with
// custom_data.customer_id. The portal session is created for the customer
// id as given, which must be a Paddle customer id (ctm_...). Paddle does not
// accept a trial override on checkout or a return URL on portal sessions;
// those request fields are validated and then not sent.
package paddle

import (
	"context"
	"errors"
	"log/slog"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

const customDataCustomerID = "customer_id"

// Sessions is a billing.Sessions backed by Paddle.
type Sessions struct {
	api       API
	priceID   string
	customers billing.Customers
	logger    *slog.Logger
}

var _ billing.Sessions = (*Sessions)(nil)

// Option configures Sessions.
type Option func(*Sessions)

// WithCustomers makes the issuer reject unknown customers with NotFound
// before calling Paddle.
func WithCustomers(customers billing.Customers) Option {
	return func(s *Sessions) {
		s.customers = customers
	}
}

// WithLogger sets the logger for session events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sessions) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Paddle session issuer from cfg.
func New(cfg Config, opts ...Option) (*Sessions, error) {
	api, err := NewAPI(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(api, cfg, opts...)
}

// NewWithAPI creates an issuer over an existing API. It panics if api is nil.
func NewWithAPI(api API, cfg Config, opts ...Option) (*Sessions, error) {
	if api == nil {
		panic("paddle: api cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Sessions{
		api:     api,
		priceID: cfg.PriceID,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("paddle"))
	return s, nil
}

func (s *Sessions) CreateSubscriptionSession(ctx context.Context, req billing.NewSubscriptionSession) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return "", err
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  s.priceID,
		Quantity: 1,
	})
	txn, err := s.api.CreateTransaction(ctx, &paddle.CreateTransactionRequest{
		Items:      []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{customDataCustomerID: req.CustomerID},
		Checkout:   &paddle.TransactionCheckout{URL: paddle.PtrTo(req.SuccessURL)},
	})
	if err != nil {
		return "", errors.Join(billing.ErrProvider, err)
	}
	if txn == nil || txn.Checkout == nil || txn.Checkout.URL == nil || *txn.Checkout.URL == "" {
		return "", errors.Join(billing.ErrProvider, ErrNoCheckoutURL)
	}

	s.logger.DebugContext(ctx, "checkout transaction created",
		logger.CustomerID(req.CustomerID),
		slog.String("transaction_id", txn.ID),
	)
	return *txn.Checkout.URL, nil
}

func (s *Sessions) CreateManagementSession(ctx context.Context, req billing.NewManagementSession) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return "", err
	}

	session, err := s.api.CreateCustomerPortalSession(ctx, &paddle.CreateCustomerPortalSessionRequest{
		CustomerID: req.CustomerID,
	})
	if err != nil {
		return "", errors.Join(billing.ErrProvider, err)
	}
	if session == nil || session.URLs.General.Overview == "" {
		return "", errors.Join(billing.ErrProvider, ErrNoPortalURL)
	}

	s.logger.DebugContext(ctx, "portal session created", logger.CustomerID(req.CustomerID))
	return session.URLs.General.Overview, nil
}

func (s *Sessions) checkCustomer(ctx context.Context, id string) error {
	if s.customers == nil {
		return nil
	}
	_, err := s.customers.Get(ctx, id)
	return err
}
