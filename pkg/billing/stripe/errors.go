package stripe

import (
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v84"

	"github.com/dmitrymomot/paykit/pkg/billing"
)

var (
	ErrMissingAPIKey  = errors.New("stripe: api key is required")
	ErrMissingPriceID = errors.New("stripe: price id is required")
	ErrEmptyURL       = errors.New("stripe: provider returned an empty session url")

	ErrSubscriptionEnded = errors.New("stripe: subscription has ended")
)

// mapError translates a Stripe failure on the entity kind/id into the
// billing error vocabulary. Only resource_missing codes and 404 responses
// become NotFound; other invalid_request_error failures, such as updates
// Stripe refuses, are joined with billing.ErrProvider like everything else.
func mapError(err error, kind billing.Kind, id string) error {
	if err == nil {
		return nil
	}
	if isMissing(err) {
		return billing.NotFound(kind, id)
	}
	return errors.Join(billing.ErrProvider, err)
}

func isMissing(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Code == stripe.ErrorCodeResourceMissing ||
		stripeErr.HTTPStatusCode == http.StatusNotFound
}
