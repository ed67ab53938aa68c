package static_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"
)

// testContext is a minimal handler.Context implementation for tests.
type testContext struct {
	w      http.ResponseWriter
	r      *http.Request
	values map[any]any
}

func newTestContext(r *http.Request, w *httptest.ResponseRecorder) *testContext {
	return &testContext{w: w, r: r}
}

func (c *testContext) Deadline() (time.Time, bool)            { return c.r.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}                  { return c.r.Context().Done() }
func (c *testContext) Err() error                             { return c.r.Context().Err() }
func (c *testContext) Request() *http.Request                 { return c.r }
func (c *testContext) ResponseWriter() http.ResponseWriter    { return c.w }
func (c *testContext) Param(string) string                    { return "" }

func (c *testContext) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.r.Context().Value(key)
}

func (c *testContext) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

var _ context.Context = (*testContext)(nil)
