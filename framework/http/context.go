package http

import (
	"context"
	"net/http"

	"github.com/km-arc/canister/framework/container"
)

type contextKey struct{}

// Inject is middleware that stores c in every request context.
//
//	r.Use(gohttp.Inject(app.Canister))
func Inject(c *container.Canister) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithCanister(r.Context(), c)))
		})
	}
}

// WithCanister returns a copy of ctx carrying c.
func WithCanister(ctx context.Context, c *container.Canister) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the Canister stored by Inject, or nil.
func FromContext(ctx context.Context) *container.Canister {
	c, _ := ctx.Value(contextKey{}).(*container.Canister)
	return c
}
