package service

import (
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/kochabx/netservice/errors"
	"github.com/kochabx/netservice/transport"
)

const headerContentType = "Content-Type"

// Compose resolves d against cfg into a wire request. It does no I/O.
func Compose(cfg *Configuration, d Descriptor) (*transport.Request, error) {
	if cfg == nil {
		return nil, errors.InvalidConfiguration("service has no configuration")
	}
	if isNil(d) {
		return nil, errors.MissingEndpoint("no request to execute")
	}

	method := d.Method()
	if !method.Valid() {
		return nil, errors.InvalidMethod("unsupported method %q", string(method))
	}

	u, err := resolveURL(cfg.baseURL, d.Endpoint())
	if err != nil {
		return nil, err
	}

	header := MergeHeaders(cfg.defaultHeaders, d.Headers())

	var body []byte
	if b := d.Body(); b != nil {
		data, contentType, err := b.Encode()
		if err != nil {
			return nil, err
		}
		body = data
		if _, ok := header[headerContentType]; !ok && contentType != "" {
			header[headerContentType] = contentType
		}
	}

	timeout := cfg.DefaultTimeout()
	if t, ok := d.Timeout(); ok {
		timeout = t
	}
	policy := cfg.DefaultCachePolicy()
	if p, ok := d.CachePolicy(); ok {
		policy = p
	}

	return &transport.Request{
		URL:         u,
		Method:      method.String(),
		Header:      header,
		Timeout:     timeout,
		CachePolicy: policy,
		Body:        body,
	}, nil
}

// MergeHeaders overlays override on defaults. Keys are canonicalized so that
// "x-api-key" and "X-Api-Key" address the same header.
func MergeHeaders(defaults, override map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(override))
	for k, v := range defaults {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range override {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	return merged
}

// resolveURL appends endpoint to the base URL text and parses the result.
// A doubled slash at the seam is collapsed.
func resolveURL(base *url.URL, endpoint string) (*url.URL, error) {
	raw := base.String()
	if strings.HasSuffix(raw, "/") && strings.HasPrefix(endpoint, "/") {
		endpoint = endpoint[1:]
	}
	raw += endpoint

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.InvalidURL("endpoint %q does not form a valid url with %q", endpoint, base.String()).WithCause(err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, errors.InvalidURL("composed url %q is not absolute", raw)
	}
	return u, nil
}

// isNil also catches a typed nil pointer stored in the interface
func isNil(d Descriptor) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
