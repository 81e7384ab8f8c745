package models

import (
	"errors"
	"fmt"

	"FxSignals/pkg/validate"
)

// ErrorKind classifies why a submission failed.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindTransport         ErrorKind = "transport"
	KindService           ErrorKind = "service"
	KindMalformedResponse ErrorKind = "malformed_response"
)

// User-facing messages for kinds whose cause is not shown.
const (
	MessageValidation = "Please correct the highlighted fields."
	MessageTransport  = "Could not reach the prediction service. Please try again."
	MessageService    = "The prediction service returned an error."
	MessageMalformed  = "The prediction service returned an unexpected response."
)

// ErrOutcomeNotFound is returned when no terminal outcome is stored for a submission id.
var ErrOutcomeNotFound = errors.New("outcome not found")

// ErrSubmissionInFlight is returned when a submit arrives while a request is loading.
var ErrSubmissionInFlight = errors.New("a request is already in flight")

// SignalError is the typed error of every failed submission.
type SignalError struct {
	Kind    ErrorKind
	Message string
	// Status is the HTTP status of a service error, zero otherwise.
	Status int
	Fields []validate.FieldError
	Err    error
}

func (e *SignalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}

// Failure converts the error into the user-facing part stored in state.
func (e *SignalError) Failure() *Failure {
	f := &Failure{Kind: e.Kind, Message: e.Message, Status: e.Status}
	if len(e.Fields) > 0 {
		f.Fields = append([]validate.FieldError(nil), e.Fields...)
	}
	return f
}

// NewValidationError wraps field errors.
func NewValidationError(fields []validate.FieldError) *SignalError {
	return &SignalError{Kind: KindValidation, Message: MessageValidation, Fields: fields}
}

// NewTransportError wraps a network failure. The cause stays out of the message.
func NewTransportError(err error) *SignalError {
	return &SignalError{Kind: KindTransport, Message: MessageTransport, Err: err}
}

// NewServiceError reports a non-2xx response. An empty message falls back to the generic one.
func NewServiceError(status int, message string) *SignalError {
	if message == "" {
		message = MessageService
	}
	return &SignalError{Kind: KindService, Message: message, Status: status}
}

// NewMalformedError reports a 2xx body that could not be normalized.
func NewMalformedError(err error) *SignalError {
	return &SignalError{Kind: KindMalformedResponse, Message: MessageMalformed, Err: err}
}

// Failure is the user-facing description of a failed submission.
type Failure struct {
	Kind    ErrorKind             `json:"kind"`
	Message string                `json:"message"`
	Status  int                   `json:"status,omitempty"`
	Fields  []validate.FieldError `json:"fields,omitempty"`
}
