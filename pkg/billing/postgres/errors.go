package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/paykit/pkg/billing"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrCorruptRecord            = errors.New("billing row is malformed")
)

// mapError converts a query error into the billing vocabulary. A missing
// row becomes NotFound for the given kind and id.
func mapError(err error, kind billing.Kind, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return billing.NotFound(kind, id)
	case isBillingError(err):
		return err
	default:
		return errors.Join(billing.ErrProvider, err)
	}
}

func isBillingError(err error) bool {
	return errors.Is(err, billing.ErrNotFound) ||
		errors.Is(err, billing.ErrInvalidState) ||
		errors.Is(err, billing.ErrInvalidInput) ||
		errors.Is(err, billing.ErrProvider)
}
