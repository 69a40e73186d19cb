// Package transport lets SDK clients that build their own requests honour a
// caller's context, a test base URL and extra query parameters.
package transport

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"
)

// Call is a RoundTripper bound to a single SDK call.
type Call struct {
	ctx    context.Context
	base   *url.URL
	query  url.Values
	next   http.RoundTripper
	status atomic.Int32
}

type Option func(*Call)

// WithBaseURL sends requests to base's scheme and host, keeping the path the
// SDK chose. A nil base leaves requests alone.
func WithBaseURL(base *url.URL) Option {
	return func(c *Call) { c.base = base }
}

// WithQuery adds query parameters the SDK has no field for.
func WithQuery(q url.Values) Option {
	return func(c *Call) { c.query = q }
}

// Bind returns a copy of hc whose requests carry ctx, and the Call that
// records what came back.
func Bind(ctx context.Context, hc *http.Client, opts ...Option) (*http.Client, *Call) {
	if hc == nil {
		hc = http.DefaultClient
	}
	c := &Call{ctx: ctx, next: hc.Transport}
	if c.next == nil {
		c.next = http.DefaultTransport
	}
	for _, opt := range opts {
		opt(c)
	}
	bound := *hc
	bound.Transport = c
	return &bound, c
}

func (c *Call) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(c.ctx)
	if c.base != nil {
		out.URL.Scheme = c.base.Scheme
		out.URL.Host = c.base.Host
		out.Host = ""
	}
	if len(c.query) > 0 {
		q := out.URL.Query()
		for k, vs := range c.query {
			q[k] = vs
		}
		out.URL.RawQuery = q.Encode()
	}

	resp, err := c.next.RoundTrip(out)
	if resp != nil {
		c.status.Store(int32(resp.StatusCode))
	}
	return resp, err
}

// Status is the HTTP status of the last response, or 0 if none arrived.
func (c *Call) Status() int {
	return int(c.status.Load())
}
