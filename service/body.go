package service

import (
	"encoding/json"
	"sync"

	"github.com/kochabx/netservice/errors"
)

// Encoding tags how a Body payload is turned into bytes
type Encoding string

const EncodingJSON Encoding = "json"

// Encoder turns a payload into request bytes
type Encoder interface {
	ContentType() string
	Encode(payload any) ([]byte, error)
}

type jsonEncoder struct{}

func (jsonEncoder) ContentType() string { return "application/json" }

func (jsonEncoder) Encode(payload any) ([]byte, error) {
	return json.Marshal(payload)
}

var (
	encodersMu sync.RWMutex
	encoders   = map[Encoding]Encoder{
		EncodingJSON: jsonEncoder{},
	}
)

// RegisterEncoder installs the encoder used for an encoding tag, replacing any previous one
func RegisterEncoder(encoding Encoding, encoder Encoder) {
	encodersMu.Lock()
	defer encodersMu.Unlock()
	encoders[encoding] = encoder
}

func lookupEncoder(encoding Encoding) (Encoder, bool) {
	encodersMu.RLock()
	defer encodersMu.RUnlock()
	e, ok := encoders[encoding]
	return e, ok
}

// Body is a payload waiting to be encoded
type Body struct {
	payload  any
	encoding Encoding
}

// NewBody wraps payload with an encoding tag. Encodability is checked when the request is composed.
func NewBody(payload any, encoding Encoding) *Body {
	return &Body{payload: payload, encoding: encoding}
}

// JSONBody wraps payload for JSON encoding
func JSONBody(payload any) *Body {
	return NewBody(payload, EncodingJSON)
}

func (b *Body) Payload() any {
	return b.payload
}

func (b *Body) Encoding() Encoding {
	return b.encoding
}

// Encode returns the wire bytes and their content type
func (b *Body) Encode() ([]byte, string, error) {
	encoder, ok := lookupEncoder(b.encoding)
	if !ok {
		return nil, "", errors.EncodingFailed("no encoder registered for %q", b.encoding)
	}

	data, err := encoder.Encode(b.payload)
	if err != nil {
		return nil, "", errors.EncodingFailed("payload is not encodable as %s", b.encoding).WithCause(err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, encoder.ContentType(), nil
}
