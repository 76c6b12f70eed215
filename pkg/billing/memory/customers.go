package memory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

// Customers is a map-backed billing.Customers. List returns customers in
// creation order.
type Customers struct {
	mu        sync.RWMutex
	customers map[string]billing.Customer
	order     []string

	newID  func() string
	logger *slog.Logger
}

var _ billing.Customers = (*Customers)(nil)

func NewCustomers(opts ...Option) *Customers {
	o := applyOptions(opts)
	return newCustomers(o)
}

func newCustomers(o *options) *Customers {
	return &Customers{
		customers: make(map[string]billing.Customer),
		newID:     o.newID,
		logger:    o.logger,
	}
}

func (s *Customers) List(ctx context.Context) ([]billing.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]billing.Customer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.customers[id])
	}
	return out, nil
}

func (s *Customers) Get(ctx context.Context, id string) (billing.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return billing.Customer{}, billing.NotFound(billing.KindCustomer, id)
	}
	return c, nil
}

func (s *Customers) Create(ctx context.Context, req billing.NewCustomer) (billing.Customer, error) {
	if err := req.Validate(); err != nil {
		return billing.Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := billing.Customer{ID: s.newID(), Email: req.Email}
	s.customers[c.ID] = c
	s.order = append(s.order, c.ID)

	s.logger.DebugContext(ctx, "customer created", logger.CustomerID(c.ID))
	return c, nil
}

// Delete removes the customer. Subscriptions of the customer are kept.
func (s *Customers) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return billing.NotFound(billing.KindCustomer, id)
	}
	delete(s.customers, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })

	s.logger.DebugContext(ctx, "customer deleted", logger.CustomerID(id))
	return nil
}

func (s *Customers) SetupPayments(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return billing.NotFound(billing.KindCustomer, id)
	}
	c.PaymentReady = true
	s.customers[id] = c

	s.logger.DebugContext(ctx, "customer payment method attached", logger.CustomerID(id))
	return nil
}
