package validator

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidURLWithScheme validates that a string is an absolute URL with a host
// and one of the given schemes.
func ValidURLWithScheme(field, value string, schemes []string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}
			u, err := url.ParseRequestURI(value)
			if err != nil || u.Host == "" {
				return false
			}
			return slices.Contains(schemes, u.Scheme)
		},
		Error: newError(field,
			fmt.Sprintf("must be a valid URL with scheme: %s", strings.Join(schemes, ", ")),
			"validation.url_scheme",
			map[string]any{"schemes": schemes},
		),
	}
}

// ValidRedirectURL validates an absolute http or https URL, the only kind
// hosted checkout and portal pages can redirect back to.
func ValidRedirectURL(field, value string) Rule {
	return ValidURLWithScheme(field, value, []string{"http", "https"})
}
