package billingtest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/paykit/pkg/billing"
)

// ErrOutsideTestDomain is returned when a test tries to create a customer
// whose email is not in the scoped domain.
var ErrOutsideTestDomain = errors.New("customer email outside test domain")

// DefaultTestDomain is the email domain used by the contract suite.
const DefaultTestDomain = "@example.com"

type domainCustomers struct {
	next   billing.Customers
	domain string
}

// DomainCustomers scopes next to customers whose email ends with domain.
// List hides everything else and Create refuses other emails, so the
// contract suite can run against a shared provider account without
// touching real customers.
func DomainCustomers(next billing.Customers, domain string) billing.Customers {
	if next == nil {
		panic("billingtest: customers cannot be nil")
	}
	if domain == "" {
		domain = DefaultTestDomain
	}
	return &domainCustomers{next: next, domain: domain}
}

// Scoped returns b with its customers restricted by DomainCustomers.
func Scoped(b *billing.Billing, domain string) *billing.Billing {
	return billing.New(DomainCustomers(b.Customers(), domain), b.Subscriptions(), b.Sessions())
}

func (c *domainCustomers) List(ctx context.Context) ([]billing.Customer, error) {
	all, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	scoped := make([]billing.Customer, 0, len(all))
	for _, customer := range all {
		if strings.HasSuffix(customer.Email, c.domain) {
			scoped = append(scoped, customer)
		}
	}
	return scoped, nil
}

func (c *domainCustomers) Get(ctx context.Context, id string) (billing.Customer, error) {
	return c.next.Get(ctx, id)
}

func (c *domainCustomers) Create(ctx context.Context, req billing.NewCustomer) (billing.Customer, error) {
	if strings.TrimSpace(req.Email) != "" && !strings.HasSuffix(req.Email, c.domain) {
		return billing.Customer{}, fmt.Errorf("%w: only %s customers can be created", ErrOutsideTestDomain, c.domain)
	}
	return c.next.Create(ctx, req)
}

func (c *domainCustomers) Delete(ctx context.Context, id string) error {
	return c.next.Delete(ctx, id)
}

func (c *domainCustomers) SetupPayments(ctx context.Context, id string) error {
	return c.next.SetupPayments(ctx, id)
}
