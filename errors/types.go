package errors

// Error kinds raised while composing, sending and classifying a request

const (
	ReasonInvalidConfiguration = "INVALID_CONFIGURATION"
	ReasonInvalidURL           = "INVALID_URL"
	ReasonMissingEndpoint      = "MISSING_ENDPOINT"
	ReasonInvalidMethod        = "INVALID_METHOD"
	ReasonEncodingFailed       = "ENCODING_FAILED"
	ReasonNoResponse           = "NO_RESPONSE"
	ReasonInvalidResponse      = "INVALID_RESPONSE"
	ReasonEmptyData            = "EMPTY_DATA"
	ReasonHTTPStatus           = "HTTP_STATUS"
	ReasonCancelled            = "CANCELLED"
)

// CodeCancelled mirrors the non-standard "client closed request" status
const CodeCancelled = 499

// Sentinels for errors.Is. ErrHTTPStatus has no code so it matches every failing status.
var (
	ErrInvalidConfiguration = New(400, ReasonInvalidConfiguration, "invalid configuration")
	ErrInvalidURL           = New(400, ReasonInvalidURL, "invalid url")
	ErrMissingEndpoint      = New(400, ReasonMissingEndpoint, "missing endpoint")
	ErrInvalidMethod        = New(405, ReasonInvalidMethod, "invalid method")
	ErrEncodingFailed       = New(422, ReasonEncodingFailed, "encoding failed")
	ErrNoResponse           = New(503, ReasonNoResponse, "no response")
	ErrInvalidResponse      = New(502, ReasonInvalidResponse, "invalid response")
	ErrEmptyData            = New(502, ReasonEmptyData, "empty data")
	ErrHTTPStatus           = New(0, ReasonHTTPStatus, "http status")
	ErrCancelled            = New(CodeCancelled, ReasonCancelled, "cancelled")
)

func InvalidConfiguration(format string, args ...any) *Error {
	return New(400, ReasonInvalidConfiguration, format, args...)
}

func InvalidURL(format string, args ...any) *Error {
	return New(400, ReasonInvalidURL, format, args...)
}

func MissingEndpoint(format string, args ...any) *Error {
	return New(400, ReasonMissingEndpoint, format, args...)
}

func InvalidMethod(format string, args ...any) *Error {
	return New(405, ReasonInvalidMethod, format, args...)
}

func EncodingFailed(format string, args ...any) *Error {
	return New(422, ReasonEncodingFailed, format, args...)
}

func NoResponse(format string, args ...any) *Error {
	return New(503, ReasonNoResponse, format, args...)
}

func InvalidResponse(format string, args ...any) *Error {
	return New(502, ReasonInvalidResponse, format, args...)
}

func EmptyData(format string, args ...any) *Error {
	return New(502, ReasonEmptyData, format, args...)
}

// HTTPStatus reports a response whose status is outside the success range.
// The code is the response status itself.
func HTTPStatus(status int, format string, args ...any) *Error {
	return New(status, ReasonHTTPStatus, format, args...)
}

func Cancelled(format string, args ...any) *Error {
	return New(CodeCancelled, ReasonCancelled, format, args...)
}
