package validator

import "time"

// NonNegativeDuration validates that d is zero or positive.
func NonNegativeDuration(field string, d time.Duration) Rule {
	return Rule{
		Check: func() bool {
			return d >= 0
		},
		Error: newError(field, "must not be negative", "validation.non_negative", nil),
	}
}
