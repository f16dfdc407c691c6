// Package kit holds the transport-agnostic plumbing shared by the HTTP
// and MCP surfaces: the Endpoint abstraction, middleware composition, and
// request-scoped context values.
package kit

import "context"

// Endpoint is a transport-agnostic request handler. HTTP routes and MCP
// tools both dispatch into an Endpoint, so business logic is written once.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint, adding cross-cutting behaviour without
// changing the signature.
type Middleware func(next Endpoint) Endpoint

// Chain composes middlewares left-to-right: the first middleware in the
// slice is the outermost wrapper (executed first on the request path).
//
//	chained := Chain(logging, recovery)(base)
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
