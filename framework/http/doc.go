// Package http provides JSON response helpers, request readers and the
// read-only diagnostics endpoints of a Canister.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	prefix := req.Query("prefix", "")
//	detail := req.QueryBool("detail", false)
//	key    := req.RouteParam("key")   // requires the chi router
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)           // raw JSON with status
//	res.Success(data)             // 200 {"data": ...}
//	res.Created(data)             // 201 {"data": ...}
//	res.Error(400, "bad input")   // {"message": "bad input"}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ServerError()             // 500 {"message": "Server Error."}
//	res.ValidationError(errs)     // 422 {"errors": {"field": ["msg"]}}
//
// # Diagnostics
//
// Diagnostics serves the registrations of a Canister as JSON without
// resolving anything:
//
//	router.Mount("/_canister", gohttp.Diagnostics(c))
//
//	GET /_canister                  summary counts and the canister id
//	GET /_canister/aliases          alias → target
//	GET /_canister/keys?prefix=db.  stored keys, 422 on a malformed prefix
//	GET /_canister/keys/{key}       flags for one key, 404 when unknown
//
// Inject stores a Canister in the request context for any handler:
//
//	router.Middleware(gohttp.Inject(c))
//	c := gohttp.FromContext(r.Context())
package http
