// Package transport is the boundary between request composition and the network.
package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// ErrCacheMiss is returned when a request may only be answered from cache and nothing is stored
var ErrCacheMiss = errors.New("transport: no cached response")

// Request is a fully resolved request. It is built once and handed to a Transport once.
type Request struct {
	URL         *url.URL
	Method      string
	Header      map[string]string
	Timeout     time.Duration
	CachePolicy CachePolicy
	// Body is nil when the request carries no payload
	Body []byte
}

// Response is whatever a transport produced for a request.
// Only *HTTPResponse is an HTTP response.
type Response interface {
	Protocol() string
}

// HTTPResponse is a complete HTTP exchange. Body is nil only when the
// transport obtained no body at all; an empty body is a non-nil empty slice.
type HTTPResponse struct {
	StatusCode int
	Proto      string
	Header     http.Header
	Body       []byte
	FromCache  bool
}

func (r *HTTPResponse) Protocol() string {
	if r.Proto == "" {
		return "HTTP/1.1"
	}
	return r.Proto
}

// Transport submits a request and waits for its outcome. Cancelling ctx must
// abort the in-flight call.
type Transport interface {
	Do(ctx context.Context, req *Request) (Response, error)
}

// Func adapts a function to Transport
type Func func(ctx context.Context, req *Request) (Response, error)

func (f Func) Do(ctx context.Context, req *Request) (Response, error) {
	return f(ctx, req)
}
