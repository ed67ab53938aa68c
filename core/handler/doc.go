// Package handler provides the types for HTTP request processing with
// type-safe context handling and composable middleware.
//
// A HandlerFunc produces a Response; the Response renders the actual HTTP
// reply. This split keeps the decision ("what to send") separate from the
// rendering ("how to send it") and makes both halves easy to test:
//
//	func hello(ctx handler.Context) handler.Response {
//		name := ctx.Param("name")
//		return func(w http.ResponseWriter, r *http.Request) error {
//			_, err := io.WriteString(w, "Hello, "+name)
//			return err
//		}
//	}
//
// Handlers are generic over the Context interface, so applications can
// substitute their own context carrying request-scoped state. NewContext
// returns the default implementation, and Adapt bridges a typed handler to
// a plain http.Handler:
//
//	mux.Handle("/hello", handler.Adapt(
//		handler.Chain(hello, middleware.RequestID[handler.Context]()),
//		func(w http.ResponseWriter, r *http.Request) handler.Context {
//			return handler.NewContext(w, r, nil)
//		},
//		nil,
//	))
package handler
