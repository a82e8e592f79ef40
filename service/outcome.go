package service

import "fmt"

// OutcomeKind is the variant of an Outcome
type OutcomeKind int

const (
	OutcomeNoResponse OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "no_response"
	}
}

// Outcome classifies a completed exchange. Success and Failure carry the status code.
type Outcome struct {
	kind   OutcomeKind
	status int
}

func Success(status int) Outcome {
	return Outcome{kind: OutcomeSuccess, status: status}
}

func Failure(status int) Outcome {
	return Outcome{kind: OutcomeFailure, status: status}
}

func NoResponse() Outcome {
	return Outcome{kind: OutcomeNoResponse}
}

// ClassifyStatus is Success for 200 <= status < 299 and Failure otherwise.
// 299 itself is a failure.
func ClassifyStatus(status int) Outcome {
	if status >= 200 && status < 299 {
		return Success(status)
	}
	return Failure(status)
}

func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// StatusCode is zero for NoResponse
func (o Outcome) StatusCode() int {
	return o.status
}

func (o Outcome) IsSuccess() bool {
	return o.kind == OutcomeSuccess
}

func (o Outcome) String() string {
	if o.kind == OutcomeNoResponse {
		return o.kind.String()
	}
	return fmt.Sprintf("%s(%d)", o.kind, o.status)
}
