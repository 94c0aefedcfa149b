// Package httpmiddleware provides the HTTP middleware chain for the
// storefront API: panic recovery, CORS, rate limiting, request IDs, and
// request-scoped logging.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to handler so that the first middleware in the
// list is the outermost one at request time.
func Wrap(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
