// Package billingtest holds the behavioral contract every billing backend
// must satisfy.
//
//	func TestContract(t *testing.T) {
//		billingtest.Run(t, func(t *testing.T) *billing.Billing {
//			return memory.New()
//		})
//	}
//
// Against a live provider account, wrap the backend with Scoped so the
// suite only sees and deletes customers in the test email domain.
package billingtest
