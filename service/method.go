package service

import "net/http"

// Method is the HTTP method of a request. The zero value means GET.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
	MethodPatch  Method = http.MethodPatch
)

func (m Method) String() string {
	if m == "" {
		return string(MethodGet)
	}
	return string(m)
}

// Valid reports whether m is one of the supported methods
func (m Method) Valid() bool {
	switch m {
	case "", MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch:
		return true
	}
	return false
}
