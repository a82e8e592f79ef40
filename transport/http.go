package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kochabx/netservice/cache"
	"github.com/kochabx/netservice/log"
)

const (
	defaultBufferSize = 4096
	maxBufferSize     = 1024 * 1024 // 1MB

	// DefaultCacheTTL applies to cacheable responses without an explicit max-age
	DefaultCacheTTL = 5 * time.Minute
)

// HTTP is the net/http backed Transport. Responses to GET requests are
// stored in and served from the configured cache according to each request's policy.
type HTTP struct {
	client     *http.Client
	cache      cache.Cache
	clock      clock.Clock
	defaultTTL time.Duration
	logger     *log.Logger
	bufferPool sync.Pool
}

// HTTPOption configures the HTTP transport
type HTTPOption func(*HTTP)

// WithClient sets the underlying net/http client
func WithClient(client *http.Client) HTTPOption {
	return func(t *HTTP) {
		t.client = client
	}
}

// WithCache enables response caching
func WithCache(c cache.Cache) HTTPOption {
	return func(t *HTTP) {
		t.cache = c
	}
}

// WithClock sets the clock used to timestamp cache entries
func WithClock(c clock.Clock) HTTPOption {
	return func(t *HTTP) {
		t.clock = c
	}
}

// WithDefaultCacheTTL sets the freshness lifetime used when a response has no max-age
func WithDefaultCacheTTL(ttl time.Duration) HTTPOption {
	return func(t *HTTP) {
		t.defaultTTL = ttl
	}
}

// WithLogger sets the logger for cache failures
func WithLogger(logger *log.Logger) HTTPOption {
	return func(t *HTTP) {
		t.logger = logger
	}
}

// NewHTTP creates an HTTP transport. Without WithCache no response is ever cached.
func NewHTTP(opts ...HTTPOption) *HTTP {
	t := &HTTP{
		client:     &http.Client{},
		clock:      clock.New(),
		defaultTTL: DefaultCacheTTL,
		logger:     log.G,
		bufferPool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
			},
		},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Do sends req, honouring its timeout and cache policy
func (t *HTTP) Do(ctx context.Context, req *Request) (Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	key := cacheKey(req)
	cacheable := t.cache != nil && key != ""

	if cacheable && req.CachePolicy != ReloadIgnoringLocalCacheData {
		if resp, ok := t.lookup(ctx, key, req.CachePolicy); ok {
			return resp, nil
		}
	}
	if req.CachePolicy == ReturnCacheDataDontLoad {
		return nil, ErrCacheMiss
	}

	resp, err := t.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if cacheable {
		t.store(ctx, key, resp)
	}
	return resp, nil
}

// send performs the network round trip and reads the whole body
func (t *HTTP) send(ctx context.Context, req *Request) (*HTTPResponse, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	buf := t.getBuffer()
	defer t.putBuffer(buf)

	if _, err := buf.ReadFrom(httpResp.Body); err != nil {
		return nil, err
	}

	return &HTTPResponse{
		StatusCode: httpResp.StatusCode,
		Proto:      httpResp.Proto,
		Header:     httpResp.Header,
		Body:       bytes.Clone(buf.Bytes()),
	}, nil
}

func (t *HTTP) lookup(ctx context.Context, key string, policy CachePolicy) (*HTTPResponse, bool) {
	entry, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		t.logger.Warn().Err(err).Str("key", key).Msg("cache lookup failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if policy == UseProtocolCachePolicy && !entry.Fresh(t.clock.Now()) {
		return nil, false
	}

	body := entry.Body
	if body == nil {
		body = []byte{}
	}
	return &HTTPResponse{
		StatusCode: entry.StatusCode,
		Proto:      entry.Proto,
		Header:     entry.Header.Clone(),
		Body:       bytes.Clone(body),
		FromCache:  true,
	}, true
}

func (t *HTTP) store(ctx context.Context, key string, resp *HTTPResponse) {
	if resp.StatusCode != http.StatusOK {
		return
	}
	ttl, ok := freshness(resp.Header, t.defaultTTL)
	if !ok {
		return
	}

	now := t.clock.Now()
	entry := &cache.Entry{
		StatusCode: resp.StatusCode,
		Proto:      resp.Proto,
		Header:     resp.Header.Clone(),
		Body:       bytes.Clone(resp.Body),
		StoredAt:   now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := t.cache.Set(ctx, key, entry); err != nil {
		t.logger.Warn().Err(err).Str("key", key).Msg("cache store failed")
	}
}

func (t *HTTP) getBuffer() *bytes.Buffer {
	buf := t.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (t *HTTP) putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxBufferSize {
		t.bufferPool.Put(buf)
	}
}

// cacheKey identifies cacheable requests. Only GET is cached, and requests
// carrying credentials bypass the cache because the key cannot tell callers apart.
func cacheKey(req *Request) string {
	if req.Method != http.MethodGet || req.URL == nil {
		return ""
	}
	for k := range req.Header {
		switch http.CanonicalHeaderKey(k) {
		case "Authorization", "Proxy-Authorization", "Cookie":
			return ""
		}
	}
	return req.Method + " " + req.URL.String()
}

// freshness reads Cache-Control. The second result is false when the response must not be stored.
func freshness(header http.Header, fallback time.Duration) (time.Duration, bool) {
	// the key ignores request headers, so varying responses cannot be told apart
	if header.Get("Vary") != "" {
		return 0, false
	}

	ttl := fallback
	noCache := false
	for _, directive := range strings.Split(header.Get("Cache-Control"), ",") {
		name, value, _ := strings.Cut(strings.TrimSpace(directive), "=")
		switch strings.ToLower(name) {
		case "no-store", "private":
			return 0, false
		case "no-cache":
			noCache = true
		case "max-age":
			if secs, err := strconv.Atoi(strings.Trim(value, `"`)); err == nil && secs >= 0 {
				ttl = time.Duration(secs) * time.Second
			}
		}
	}
	if noCache {
		ttl = 0
	}
	return ttl, true
}
