package paddle

import "errors"

var (
	ErrMissingAPIKey      = errors.New("paddle API key is required")
	ErrMissingPriceID     = errors.New("paddle price ID is required")
	ErrInvalidEnvironment = errors.New("invalid paddle environment, use sandbox or production")
	ErrNoCheckoutURL      = errors.New("no checkout URL returned from paddle")
	ErrNoPortalURL        = errors.New("no portal URL returned from paddle")
)
