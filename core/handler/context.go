package handler

import (
	"context"
	"net/http"
	"time"
)

// Context defines the contract for request contexts. It extends the
// standard context.Context with HTTP-specific accessors so handlers stay
// testable and host-framework agnostic.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}

// baseContext is the default Context implementation. The context.Context
// methods delegate to the request's context; values set via SetValue
// shadow it.
type baseContext struct {
	w      http.ResponseWriter
	r      *http.Request
	params map[string]string
	values map[any]any
}

// NewContext creates the default Context for a request. The optional params
// map carries route parameters extracted by the host router.
func NewContext(w http.ResponseWriter, r *http.Request, params map[string]string) Context {
	return &baseContext{w: w, r: r, params: params}
}

func (c *baseContext) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

func (c *baseContext) Done() <-chan struct{} {
	return c.r.Context().Done()
}

func (c *baseContext) Err() error {
	return c.r.Context().Err()
}

func (c *baseContext) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.r.Context().Value(key)
}

func (c *baseContext) Request() *http.Request {
	return c.r
}

func (c *baseContext) ResponseWriter() http.ResponseWriter {
	return c.w
}

func (c *baseContext) Param(key string) string {
	return c.params[key]
}

func (c *baseContext) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}
