package service

import (
	"github.com/kochabx/netservice/errors"
	"github.com/kochabx/netservice/transport"
)

// Classify turns a transport outcome into a Response or an error. Checks run in
// this order: no response, non-HTTP response, missing body, status.
//
// A failing status yields both the Response and an HTTP_STATUS error carrying it.
func Classify(resp transport.Response, err error) (*Response, error) {
	if err != nil {
		return nil, errors.NoResponse("transport failed").WithCause(err)
	}
	if resp == nil {
		return nil, errors.NoResponse("transport returned no response")
	}

	httpResp, ok := resp.(*transport.HTTPResponse)
	if !ok {
		return nil, errors.InvalidResponse("expected an http response, got %s", resp.Protocol())
	}
	if httpResp == nil {
		return nil, errors.NoResponse("transport returned no response")
	}
	if httpResp.Body == nil {
		return nil, errors.EmptyData("response with status %d carried no body", httpResp.StatusCode)
	}

	r := newResponse(ClassifyStatus(httpResp.StatusCode), httpResp)
	if !r.outcome.IsSuccess() {
		return r, errors.HTTPStatus(httpResp.StatusCode, "request failed with status %d", httpResp.StatusCode).WithDetail(r)
	}
	return r, nil
}

// OutcomeOf classifies a raw transport response without inspecting its body
func OutcomeOf(resp transport.Response) Outcome {
	httpResp, ok := resp.(*transport.HTTPResponse)
	if !ok || httpResp == nil {
		return NoResponse()
	}
	return ClassifyStatus(httpResp.StatusCode)
}

// ResponseFromError returns the Response carried by a failing-status error
func ResponseFromError(err error) (*Response, bool) {
	var e *errors.Error
	if !errors.As(err, &e) {
		return nil, false
	}
	r, ok := e.GetDetail().(*Response)
	return r, ok && r != nil
}
