package service

import (
	"maps"
	"time"

	"github.com/kochabx/netservice/transport"
)

// Descriptor describes one logical call against a service
type Descriptor interface {
	// Endpoint is appended to the service base URL
	Endpoint() string
	Method() Method
	// Parameters are carried for the caller's benefit; composition does not read them
	Parameters() map[string]any
	// Headers override the service defaults key by key
	Headers() map[string]string
	Body() *Body
	Timeout() (time.Duration, bool)
	CachePolicy() (transport.CachePolicy, bool)
}

// Request is the default Descriptor
type Request struct {
	endpoint       string
	method         Method
	parameters     map[string]any
	headers        map[string]string
	body           *Body
	timeout        time.Duration
	cachePolicy    transport.CachePolicy
	hasCachePolicy bool
}

// RequestOption configures a Request
type RequestOption func(*Request)

// WithParameters attaches parameters to the request
func WithParameters(params map[string]any) RequestOption {
	return func(r *Request) {
		if r.parameters == nil {
			r.parameters = make(map[string]any, len(params))
		}
		maps.Copy(r.parameters, params)
	}
}

// WithHeaders sets several request headers
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		if r.headers == nil {
			r.headers = make(map[string]string, len(headers))
		}
		maps.Copy(r.headers, headers)
	}
}

// WithHeader sets one request header
func WithHeader(key, value string) RequestOption {
	return WithHeaders(map[string]string{key: value})
}

// WithBody sets the request body
func WithBody(body *Body) RequestOption {
	return func(r *Request) {
		r.body = body
	}
}

// WithJSON sets a JSON encoded request body
func WithJSON(payload any) RequestOption {
	return WithBody(JSONBody(payload))
}

// WithTimeout overrides the service default timeout; non-positive values are ignored
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithCachePolicy overrides the service default cache policy
func WithCachePolicy(p transport.CachePolicy) RequestOption {
	return func(r *Request) {
		r.cachePolicy = p
		r.hasCachePolicy = true
	}
}

// NewRequest creates a request for endpoint
func NewRequest(method Method, endpoint string, opts ...RequestOption) *Request {
	r := &Request{
		endpoint: endpoint,
		method:   method,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Request) Endpoint() string {
	return r.endpoint
}

func (r *Request) Method() Method {
	if r.method == "" {
		return MethodGet
	}
	return r.method
}

func (r *Request) Parameters() map[string]any {
	return r.parameters
}

func (r *Request) Headers() map[string]string {
	return r.headers
}

func (r *Request) Body() *Body {
	return r.body
}

func (r *Request) Timeout() (time.Duration, bool) {
	return r.timeout, r.timeout > 0
}

func (r *Request) CachePolicy() (transport.CachePolicy, bool) {
	return r.cachePolicy, r.hasCachePolicy
}

// Get creates a GET request
func Get(endpoint string, opts ...RequestOption) *Request {
	return NewRequest(MethodGet, endpoint, opts...)
}

// Delete creates a DELETE request
func Delete(endpoint string, opts ...RequestOption) *Request {
	return NewRequest(MethodDelete, endpoint, opts...)
}

// Post creates a POST request with a JSON body; a nil payload sends no body
func Post(endpoint string, payload any, opts ...RequestOption) *Request {
	return NewRequest(MethodPost, endpoint, withPayload(payload, opts)...)
}

// Put creates a PUT request with a JSON body; a nil payload sends no body
func Put(endpoint string, payload any, opts ...RequestOption) *Request {
	return NewRequest(MethodPut, endpoint, withPayload(payload, opts)...)
}

// Patch creates a PATCH request with a JSON body; a nil payload sends no body
func Patch(endpoint string, payload any, opts ...RequestOption) *Request {
	return NewRequest(MethodPatch, endpoint, withPayload(payload, opts)...)
}

func withPayload(payload any, opts []RequestOption) []RequestOption {
	if payload == nil {
		return opts
	}
	return append([]RequestOption{WithJSON(payload)}, opts...)
}
