package service

import (
	"maps"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/kochabx/netservice/errors"
	"github.com/kochabx/netservice/transport"
)

// DefaultTimeout applies to requests that set no timeout of their own
const DefaultTimeout = 15 * time.Second

// Configuration holds the per-service defaults every request is composed against.
//
// The base URL and default headers are fixed at construction. The default cache
// policy and timeout may be changed at any time; each request reads them when it
// is composed, so in-flight requests keep the values they already observed. The
// two knobs are read independently and no request is guaranteed to observe a
// pair written together.
type Configuration struct {
	baseURL        *url.URL
	defaultHeaders map[string]string
	cachePolicy    atomic.Int64
	timeout        atomic.Int64
}

// ConfigOption configures a Configuration
type ConfigOption func(*Configuration)

// WithDefaultHeaders adds headers sent with every request
func WithDefaultHeaders(headers map[string]string) ConfigOption {
	return func(c *Configuration) {
		maps.Copy(c.defaultHeaders, headers)
	}
}

// WithDefaultHeader adds one header sent with every request
func WithDefaultHeader(key, value string) ConfigOption {
	return func(c *Configuration) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultCachePolicy sets the initial default cache policy
func WithDefaultCachePolicy(p transport.CachePolicy) ConfigOption {
	return func(c *Configuration) {
		c.SetDefaultCachePolicy(p)
	}
}

// WithDefaultTimeout sets the initial default timeout
func WithDefaultTimeout(d time.Duration) ConfigOption {
	return func(c *Configuration) {
		c.SetDefaultTimeout(d)
	}
}

// NewConfiguration validates baseURL, which must be absolute
func NewConfiguration(baseURL string, opts ...ConfigOption) (*Configuration, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.InvalidConfiguration("invalid base url %q", baseURL).WithCause(err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, errors.InvalidConfiguration("base url %q is not absolute", baseURL)
	}

	c := &Configuration{
		baseURL:        u,
		defaultHeaders: make(map[string]string),
	}
	c.timeout.Store(int64(DefaultTimeout))
	c.cachePolicy.Store(int64(transport.UseProtocolCachePolicy))

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns a copy of the base URL
func (c *Configuration) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// DefaultHeaders returns a copy of the default headers
func (c *Configuration) DefaultHeaders() map[string]string {
	return maps.Clone(c.defaultHeaders)
}

func (c *Configuration) DefaultCachePolicy() transport.CachePolicy {
	return transport.CachePolicy(c.cachePolicy.Load())
}

// SetDefaultCachePolicy ignores undeclared policies
func (c *Configuration) SetDefaultCachePolicy(p transport.CachePolicy) {
	if p.Valid() {
		c.cachePolicy.Store(int64(p))
	}
}

func (c *Configuration) DefaultTimeout() time.Duration {
	return time.Duration(c.timeout.Load())
}

// SetDefaultTimeout ignores non-positive durations
func (c *Configuration) SetDefaultTimeout(d time.Duration) {
	if d > 0 {
		c.timeout.Store(int64(d))
	}
}
