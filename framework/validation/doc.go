// Package validation checks flat string maps against pipe-separated rules.
// It validates environment configuration and manifest blocks.
//
// # Basic Usage
//
//	err := validation.Validate(map[string]string{
//	    "CANISTER_ENV":           "local",
//	    "CANISTER_CACHE_CLEANUP": "5m",
//	}, validation.Rules{
//	    "CANISTER_ENV":           "required|in:local,production,testing",
//	    "CANISTER_CACHE_CLEANUP": "required|duration",
//	})
//
// A failed validation returns *Errors, which also serialises to
//
//	{"errors": {"field": ["message1", "message2"]}}
//
// # Available Rules
//
//   - required      field must be present and non-empty
//   - nullable      an empty value skips the remaining rules
//   - numeric       parseable as float64
//   - integer       parseable as int
//   - boolean       accepted by strconv.ParseBool
//   - duration      accepted by time.ParseDuration
//   - addr          a host:port pair, host may be empty
//   - gte:n, lte:n  numeric bounds
//   - in:a,b,c      value must be in the list
//   - not_in:a,b,c  value must NOT be in the list
//   - alpha_dash    letters, numbers, dashes, underscores
//   - regex:pattern must match the regexp
//
// Rules for a field stop at the first failure. Unknown rule names fail.
package validation
