// Package errors provides coded, structured errors for paintd.
//
// Every error carries a code (e.g. "P100") that maps to a registered
// template with a category, a short message and a longer explanation.
// Callers add request-specific detail and a hint:
//
//	err := errors.New("P100").
//	    WithDetail("catalog endpoint returned status 503").
//	    WithSuggestion("Check catalog.url in paintd.json")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR P100: Catalog fetch failed
//	//
//	//   catalog endpoint returned status 503
//	//
//	//   Hint: Check catalog.url in paintd.json
//
// # Categories
//
//   - config: configuration loading and validation
//   - catalog: catalog fetching and decoding
//   - event: live event stream problems
//   - cli: command line usage
//
// Registry mutations never return errors; these codes cover the layers
// around it.
package errors
