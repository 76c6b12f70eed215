package instrumented

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

type customers struct {
	next billing.Customers
	rec  *recorder
}

func (c *customers) List(ctx context.Context) ([]billing.Customer, error) {
	start := c.rec.now()
	out, err := c.next.List(ctx)
	c.rec.observe(ctx, "customers.list", start, err, slog.Int("count", len(out)))
	return out, err
}

func (c *customers) Get(ctx context.Context, id string) (billing.Customer, error) {
	start := c.rec.now()
	out, err := c.next.Get(ctx, id)
	c.rec.observe(ctx, "customers.get", start, err, logger.CustomerID(id))
	return out, err
}

func (c *customers) Create(ctx context.Context, req billing.NewCustomer) (billing.Customer, error) {
	start := c.rec.now()
	out, err := c.next.Create(ctx, req)
	c.rec.observe(ctx, "customers.create", start, err, logger.CustomerID(out.ID))
	return out, err
}

func (c *customers) Delete(ctx context.Context, id string) error {
	start := c.rec.now()
	err := c.next.Delete(ctx, id)
	c.rec.observe(ctx, "customers.delete", start, err, logger.CustomerID(id))
	return err
}

func (c *customers) SetupPayments(ctx context.Context, id string) error {
	start := c.rec.now()
	err := c.next.SetupPayments(ctx, id)
	c.rec.observe(ctx, "customers.setup_payments", start, err, logger.CustomerID(id))
	return err
}
