// Package manifest loads declarative Canister wiring from HCL files.
//
// A manifest is a list of blocks, each labelled with the key it registers:
//
//	value "app.name" { value = "billing" }
//
//	alias "configuration" { target = "config" }
//
//	factory "request.id" {}
//	share "gateway" { target = "example.com/billing.Gateway" }
//
//	define "gateway" {
//	  values = { currency = "EUR", retries = 3 }
//	  refs   = { log = "logger" }
//	}
//
// Numbers decode to int when whole and float64 otherwise, lists to []any and
// objects to map[string]any. Labels may not be empty or name a reserved
// Canister key.
//
// Load several files at once; the Canister keeps the first registration of
// each key, so base files go first:
//
//	m, err := manifest.Load("wiring/base.hcl", "wiring/prod.hcl")
//	if err != nil {
//	    return err
//	}
//	return m.Apply(c)
package manifest
