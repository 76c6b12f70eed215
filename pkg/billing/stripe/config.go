package stripe

import (
	"errors"

	"github.com/dmitrymomot/paykit/pkg/config"
)

// DefaultPaymentToken is Stripe's test-mode Visa card token.
const DefaultPaymentToken = "tok_visa"

// Config holds Stripe credentials and client-side pacing.
// A RateLimit of zero or less disables pacing.
type Config struct {
	APIKey       string  `env:"STRIPE_API_KEY,required"`
	PriceID      string  `env:"STRIPE_PRICE_ID,required"`
	PaymentToken string  `env:"STRIPE_PAYMENT_TOKEN" envDefault:"tok_visa"`
	RateLimit    float64 `env:"STRIPE_RATE_LIMIT" envDefault:"20"`
	RateBurst    int     `env:"STRIPE_RATE_BURST" envDefault:"5"`
}

func (c Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.PriceID == "" {
		errs = append(errs, ErrMissingPriceID)
	}
	return errors.Join(errs...)
}

func (c Config) paymentToken() string {
	if c.PaymentToken == "" {
		return DefaultPaymentToken
	}
	return c.PaymentToken
}

// ConfigFromEnv loads Config from STRIPE_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
