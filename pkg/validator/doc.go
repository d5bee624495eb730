// Package validator provides composable rule-based validation for form
// input, mirroring server-side checks so obviously bad registration or
// profile data is rejected before a network round trip.
//
//	err := validator.Apply(
//		validator.Required("username", username),
//		validator.ValidUsername("username", username),
//		validator.ValidEmail("email", email),
//		validator.MinLen("password", password, 8),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//		for _, e := range errs {
//			fmt.Println(e.Field, e.Message)
//		}
//	}
package validator
