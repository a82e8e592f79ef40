package service

import (
	"encoding/json"
	"mime"
	"net/http"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/kochabx/netservice/errors"
	"github.com/kochabx/netservice/transport"
)

// Response is a classified HTTP exchange
type Response struct {
	outcome   Outcome
	header    http.Header
	body      []byte
	proto     string
	fromCache bool
}

func newResponse(outcome Outcome, r *transport.HTTPResponse) *Response {
	return &Response{
		outcome:   outcome,
		header:    r.Header,
		body:      r.Body,
		proto:     r.Protocol(),
		fromCache: r.FromCache,
	}
}

func (r *Response) Outcome() Outcome {
	return r.outcome
}

func (r *Response) StatusCode() int {
	return r.outcome.StatusCode()
}

func (r *Response) Header() http.Header {
	return r.header
}

func (r *Response) Body() []byte {
	return r.body
}

func (r *Response) Proto() string {
	return r.proto
}

// FromCache reports whether the transport answered from its cache
func (r *Response) FromCache() bool {
	return r.fromCache
}

// AsText decodes the body as text. The encoding is the first argument if
// given, else the charset of the Content-Type header, else UTF-8. It returns
// false when there is no body or the encoding is unknown.
func (r *Response) AsText(encoding ...string) (string, bool) {
	if r.body == nil {
		return "", false
	}

	name := "utf-8"
	if len(encoding) > 0 && encoding[0] != "" {
		name = encoding[0]
	} else if charset := r.charset(); charset != "" {
		name = charset
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", false
	}
	text, err := enc.NewDecoder().Bytes(r.body)
	if err != nil {
		return "", false
	}
	return string(text), true
}

// DecodeJSON unmarshals the body into v
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return errors.InvalidResponse("response body is not valid json").WithCause(err)
	}
	return nil
}

func (r *Response) charset() string {
	ct := r.header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return params["charset"]
}
