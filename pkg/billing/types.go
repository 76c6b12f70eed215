package billing

import (
	"errors"
	"time"

	"github.com/dmitrymomot/paykit/pkg/validator"
)

// Customer is a billable party.
type Customer struct {
	ID           string
	Email        string
	PaymentReady bool
}

// Subscription is a recurring billing agreement owned by a customer.
type Subscription struct {
	ID          string
	CustomerID  string
	Status      Status
	TrialEndsAt *time.Time
}

// NewCustomer is the request to register a customer.
type NewCustomer struct {
	Email string
}

// Validate requires a non-empty email.
func (r NewCustomer) Validate() error {
	return invalid(validator.Apply(
		validator.RequiredString("email", r.Email),
	))
}

// NewSubscription is the request to start a subscription.
// A zero TrialPeriod means no trial.
type NewSubscription struct {
	CustomerID  string
	TrialPeriod time.Duration
}

// Validate requires a customer id and rejects negative trial periods.
func (r NewSubscription) Validate() error {
	return invalid(validator.Apply(
		validator.RequiredString("customer_id", r.CustomerID),
		validator.NonNegativeDuration("trial_period", r.TrialPeriod),
	))
}

// NewSubscriptionSession is the request for a hosted checkout session.
type NewSubscriptionSession struct {
	CustomerID  string
	SuccessURL  string
	TrialPeriod time.Duration
}

// Validate requires a customer id and an absolute http(s) success URL.
func (r NewSubscriptionSession) Validate() error {
	return invalid(validator.Apply(
		validator.RequiredString("customer_id", r.CustomerID),
		validator.ValidRedirectURL("success_url", r.SuccessURL),
		validator.NonNegativeDuration("trial_period", r.TrialPeriod),
	))
}

// NewManagementSession is the request for a self-service billing portal session.
type NewManagementSession struct {
	CustomerID string
	ReturnURL  string
}

// Validate requires a customer id and an absolute http(s) return URL.
func (r NewManagementSession) Validate() error {
	return invalid(validator.Apply(
		validator.RequiredString("customer_id", r.CustomerID),
		validator.ValidRedirectURL("return_url", r.ReturnURL),
	))
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrInvalidInput, err)
}
