// Package apperr defines the error taxonomy shared by the job processing
// pipeline. Every failure that reaches the HTTP boundary is an *Error with a
// Kind, so the handler can pick a status code and a diagnostic payload
// without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/go-errors/errors"
)

type Kind string

const (
	KindInvalidInput Kind = "InvalidInputError"
	KindUpstream     Kind = "UpstreamError"
	KindNetwork      Kind = "NetworkError"
	KindExtraction   Kind = "ExtractionError"
	KindMissingField Kind = "MissingRequiredFieldError"
	KindValidation   Kind = "ValidationError"
	KindStorage      Kind = "StorageError"
)

// Error is a classified pipeline failure. Payload carries diagnostic detail
// (raw provider body, raw completion, failing fields) for operators; it is
// only ever exposed on 500-class responses.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	Payload any
	Stack   []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StackTrace() []byte {
	return e.Stack
}

// WithPayload attaches diagnostic detail and returns the same error.
func (e *Error) WithPayload(payload any) *Error {
	e.Payload = payload
	return e
}

func New(kind Kind, message string, err error) *Error {
	var stack []byte
	if err != nil {
		var stackErr *goerrors.Error
		if errors.As(err, &stackErr) {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message, nil)
}

func Upstream(message string, err error) *Error {
	return New(KindUpstream, message, err)
}

func Network(message string, err error) *Error {
	return New(KindNetwork, message, err)
}

// Extraction records a completion that could not be parsed as a JSON object.
// The raw completion text and the parser message travel in the payload.
func Extraction(raw string, err error) *Error {
	e := New(KindExtraction, "failed to parse AI response", err)
	detail := ExtractionDetail{AIResponse: raw}
	if err != nil {
		detail.Message = err.Error()
	}
	return e.WithPayload(detail)
}

func MissingField(field string) *Error {
	return New(KindMissingField, fmt.Sprintf("required field %q is missing or empty", field), nil).
		WithPayload(map[string]string{"field": field})
}

// Validation reports every field that failed schema validation.
func Validation(fields []FieldError) *Error {
	return New(KindValidation, "record does not match job posting schema", nil).WithPayload(fields)
}

func Storage(message string, err error) *Error {
	return New(KindStorage, message, err)
}

// ExtractionDetail is the diagnostic payload of an ExtractionError.
type ExtractionDetail struct {
	Message    string `json:"message"`
	AIResponse string `json:"aiResponse"`
}

// FieldError is a single schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code returned by the API. Only
// client input faults are 4xx; everything else is a server-side failure.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
