package paddle

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/paykit/pkg/config"
)

const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

type Config struct {
	APIKey      string `env:"PADDLE_API_KEY,required"`
	PriceID     string `env:"PADDLE_PRICE_ID,required"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"sandbox"`
}

// Validate reports every missing or invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.PriceID == "" {
		errs = append(errs, ErrMissingPriceID)
	}
	switch c.environment() {
	case EnvironmentSandbox, EnvironmentProduction:
	default:
		errs = append(errs, ErrInvalidEnvironment)
	}
	return errors.Join(errs...)
}

func (c Config) environment() string {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	if env == "" {
		return EnvironmentSandbox
	}
	return env
}

// ConfigFromEnv loads Config from PADDLE_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
