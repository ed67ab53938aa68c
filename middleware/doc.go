// Package middleware provides generic middleware for handler chains:
// request ID propagation, structured access logging, and panic recovery.
//
// All middleware is generic over the handler context type and composes via
// handler.Chain:
//
//	h := handler.Chain(endpoint,
//		middleware.RequestID[handler.Context](),
//		middleware.Logging[handler.Context](log),
//		middleware.Recovery[handler.Context](log),
//	)
package middleware
