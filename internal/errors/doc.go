// Package errors provides structured, actionable error messages for the
// contactform command and its configuration.
//
// # Error Categories
//
// Errors are organized into categories:
//   - config: contactform.json problems
//   - protocol: live channel problems (bad events, upgrade failures)
//   - session: session store and snapshot problems
//   - validation: rejected form input
//   - cli: command failures
//
// # Error Codes
//
// Each error has a unique code (e.g., "CF030") that maps to a short message
// and a detailed explanation.
//
// # Usage
//
//	err := errors.New("CF031").
//	    WithLocation("contactform.json", 4, 12).
//	    WithSuggestion(`Durations are strings such as "30s"`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR CF031: Invalid config file
//	//
//	//   contactform.json:4:12
//	//
//	//     2 │   "port": 3000,
//	//     3 │   "server": {
//	//   → 4 │     "readTimeout": 30,
//	//       │            ^
//	//     5 │   }
//	//
//	//   Hint: Durations are strings such as "30s"
package errors
