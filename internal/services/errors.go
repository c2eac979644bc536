package services

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a generation call produced no result.
type FailureKind string

const (
	// KindConfiguration means the AI credential is missing. Retrying will not help.
	KindConfiguration FailureKind = "configuration"
	// KindTransport means the generation endpoint could not be reached.
	KindTransport FailureKind = "transport"
	// KindAPI means the endpoint answered with an error payload (quota, model, bad request).
	KindAPI FailureKind = "api"
	// KindInvalidRequest means the request could not be turned into model input.
	KindInvalidRequest FailureKind = "invalid_request"
)

var ErrMissingAPIKey = errors.New("missing Gemini API key")

type GenerationError struct {
	Kind FailureKind
	// Message is safe to show to the user. For KindAPI it is the API's own message.
	Message string
	// StatusCode is the HTTP status reported by the API, when known.
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func newConfigurationError() *GenerationError {
	return &GenerationError{
		Kind:    KindConfiguration,
		Message: "AI service is not configured. Check the Gemini API key setup.",
		Err:     ErrMissingAPIKey,
	}
}

func newTransportError(err error) *GenerationError {
	return &GenerationError{Kind: KindTransport, Message: "Could not connect to AI service.", Err: err}
}

func newAPIError(status int, message string, err error) *GenerationError {
	if message == "" {
		message = "AI service returned an error."
	}
	return &GenerationError{Kind: KindAPI, Message: message, StatusCode: status, Err: err}
}

func newInvalidRequestError(message string, err error) *GenerationError {
	return &GenerationError{Kind: KindInvalidRequest, Message: message, Err: err}
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }
