package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

const (
	listCustomersQuery  = `SELECT id, email, payment_ready FROM billing_customers ORDER BY seq`
	getCustomerQuery    = `SELECT id, email, payment_ready FROM billing_customers WHERE id = $1`
	insertCustomerQuery = `INSERT INTO billing_customers (id, email) VALUES ($1, $2)`
	deleteCustomerQuery = `DELETE FROM billing_customers WHERE id = $1`
	setupPaymentsQuery  = `UPDATE billing_customers SET payment_ready = TRUE WHERE id = $1`
)

// Customers stores customers in billing_customers.
type Customers struct {
	store *store
}

var _ billing.Customers = (*Customers)(nil)

func (c *Customers) List(ctx context.Context) ([]billing.Customer, error) {
	rows, err := c.store.db.Query(ctx, listCustomersQuery)
	if err != nil {
		return nil, mapError(err, billing.KindCustomer, "")
	}
	out, err := pgx.CollectRows(rows, scanCustomer)
	if err != nil {
		return nil, mapError(err, billing.KindCustomer, "")
	}
	if out == nil {
		out = []billing.Customer{}
	}
	return out, nil
}

func (c *Customers) Get(ctx context.Context, id string) (billing.Customer, error) {
	return getCustomer(ctx, c.store.db, id, "")
}

func (c *Customers) Create(ctx context.Context, req billing.NewCustomer) (billing.Customer, error) {
	if err := req.Validate(); err != nil {
		return billing.Customer{}, err
	}

	customer := billing.Customer{ID: c.store.newID(), Email: req.Email}
	if _, err := c.store.db.Exec(ctx, insertCustomerQuery, customer.ID, customer.Email); err != nil {
		return billing.Customer{}, mapError(err, billing.KindCustomer, customer.ID)
	}

	c.store.logger.DebugContext(ctx, "customer created", logger.CustomerID(customer.ID))
	return customer, nil
}

// Delete removes the customer row. Subscriptions are kept.
func (c *Customers) Delete(ctx context.Context, id string) error {
	tag, err := c.store.db.Exec(ctx, deleteCustomerQuery, id)
	if err != nil {
		return mapError(err, billing.KindCustomer, id)
	}
	if tag.RowsAffected() == 0 {
		return billing.NotFound(billing.KindCustomer, id)
	}

	c.store.logger.DebugContext(ctx, "customer deleted", logger.CustomerID(id))
	return nil
}

func (c *Customers) SetupPayments(ctx context.Context, id string) error {
	tag, err := c.store.db.Exec(ctx, setupPaymentsQuery, id)
	if err != nil {
		return mapError(err, billing.KindCustomer, id)
	}
	if tag.RowsAffected() == 0 {
		return billing.NotFound(billing.KindCustomer, id)
	}

	c.store.logger.DebugContext(ctx, "customer payment method attached", logger.CustomerID(id))
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// getCustomer reads one customer. lock is appended to the query, e.g.
// "FOR SHARE" inside a transaction.
func getCustomer(ctx context.Context, q querier, id, lock string) (billing.Customer, error) {
	query := getCustomerQuery
	if lock != "" {
		query += " " + lock
	}
	rows := q.QueryRow(ctx, query, id)
	var customer billing.Customer
	if err := rows.Scan(&customer.ID, &customer.Email, &customer.PaymentReady); err != nil {
		return billing.Customer{}, mapError(err, billing.KindCustomer, id)
	}
	return customer, nil
}

func scanCustomer(row pgx.CollectableRow) (billing.Customer, error) {
	var customer billing.Customer
	err := row.Scan(&customer.ID, &customer.Email, &customer.PaymentReady)
	return customer, err
}
