package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paykit/pkg/validator"
)

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	t.Run("returns default message when no errors", func(t *testing.T) {
		var errs validator.ValidationErrors
		assert.Equal(t, "validation failed", errs.Error())
	})

	t.Run("returns formatted message with single error", func(t *testing.T) {
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "email", Message: "is required"})
		assert.Equal(t, "validation failed: email: is required", errs.Error())
	})

	t.Run("joins multiple errors", func(t *testing.T) {
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "email", Message: "is required"})
		errs.Add(validator.ValidationError{Field: "return_url", Message: "must be a valid URL"})
		assert.Equal(t, "validation failed: email: is required; return_url: must be a valid URL", errs.Error())
	})
}

func TestValidationErrors_Lookup(t *testing.T) {
	t.Parallel()

	errs := validator.ValidationErrors{
		{Field: "customer_id", Message: "field is required"},
		{Field: "success_url", Message: "first"},
		{Field: "success_url", Message: "second"},
	}

	assert.True(t, errs.Has("customer_id"))
	assert.False(t, errs.Has("email"))
	assert.Equal(t, []string{"first", "second"}, errs.Get("success_url"))
	assert.Nil(t, errs.Get("email"))
	assert.False(t, errs.IsEmpty())
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when all rules pass", func(t *testing.T) {
		err := validator.Apply(
			validator.RequiredString("email", "a@example.com"),
			validator.ValidRedirectURL("success_url", "https://example.com/done"),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failed rule", func(t *testing.T) {
		err := validator.Apply(
			validator.RequiredString("email", ""),
			validator.RequiredString("customer_id", "cus_123"),
			validator.ValidRedirectURL("success_url", "not a url"),
		)
		require.Error(t, err)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 2)
		assert.True(t, errs.Has("email"))
		assert.True(t, errs.Has("success_url"))
		assert.False(t, errs.Has("customer_id"))
	})
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, validator.ExtractValidationErrors(nil))
		assert.False(t, validator.IsValidationError(nil))
	})

	t.Run("unrelated error", func(t *testing.T) {
		err := errors.New("boom")
		assert.Nil(t, validator.ExtractValidationErrors(err))
		assert.False(t, validator.IsValidationError(err))
	})

	t.Run("joined and wrapped errors", func(t *testing.T) {
		sentinel := errors.New("invalid input")
		verr := validator.Apply(validator.RequiredString("email", " "))

		joined := errors.Join(sentinel, verr)
		assert.True(t, validator.IsValidationError(joined))
		assert.True(t, validator.ExtractValidationErrors(joined).Has("email"))

		wrapped := fmt.Errorf("create customer: %w", joined)
		assert.True(t, validator.IsValidationError(wrapped))
		assert.ErrorIs(t, wrapped, sentinel)
	})
}
