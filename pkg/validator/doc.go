// Package validator provides small declarative validation rules with
// translation-friendly error metadata.
//
// Every exported rule constructor returns a Rule value: a Check function plus
// the ValidationError reported when the check fails. Apply evaluates a list of
// rules and aggregates any failures into ValidationErrors, which satisfies the
// error interface, so several field problems surface in a single error return.
//
// # Usage
//
//	err := validator.Apply(
//		validator.RequiredString("email", req.Email),
//		validator.ValidRedirectURL("success_url", req.SuccessURL),
//		validator.NonNegativeDuration("trial_period", req.TrialPeriod),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//		for _, field := range []string{"email", "success_url"} {
//			fmt.Println(field, errs.Get(field))
//		}
//	}
//
// The package is stateless and goroutine-safe.
package validator
