package validator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/paykit/pkg/validator"
)

func TestRequiredString(t *testing.T) {
	t.Parallel()

	t.Run("passes for non-empty string", func(t *testing.T) {
		rule := validator.RequiredString("email", "test@example.com")
		assert.True(t, rule.Check())
		assert.Equal(t, "email", rule.Error.Field)
		assert.Equal(t, "field is required", rule.Error.Message)
		assert.Equal(t, "validation.required", rule.Error.TranslationKey)
		assert.Equal(t, map[string]any{"field": "email"}, rule.Error.TranslationValues)
	})

	t.Run("fails for empty string", func(t *testing.T) {
		assert.False(t, validator.RequiredString("email", "").Check())
	})

	t.Run("fails for whitespace-only string", func(t *testing.T) {
		assert.False(t, validator.RequiredString("email", "  \t ").Check())
	})
}

func TestValidRedirectURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"https://example.com/billing/success", true},
		{"http://localhost:8080/return?tab=billing", true},
		{"", false},
		{"   ", false},
		{"example.com/success", false},
		{"/relative/path", false},
		{"ftp://example.com/file", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			rule := validator.ValidRedirectURL("return_url", tt.value)
			assert.Equal(t, tt.valid, rule.Check())
		})
	}

	rule := validator.ValidRedirectURL("return_url", "")
	assert.Equal(t, "validation.url_scheme", rule.Error.TranslationKey)
	assert.Equal(t, []string{"http", "https"}, rule.Error.TranslationValues["schemes"])
}

func TestNonNegativeDuration(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.NonNegativeDuration("trial_period", 0).Check())
	assert.True(t, validator.NonNegativeDuration("trial_period", 14*24*time.Hour).Check())
	assert.False(t, validator.NonNegativeDuration("trial_period", -time.Second).Check())
}
