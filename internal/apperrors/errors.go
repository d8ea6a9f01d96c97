package apperrors

import (
	"errors"
	"fmt"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeMissingCredentials = "MISSING_CREDENTIALS"
	CodeIntegrationMissing = "INTEGRATION_MISSING"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// AppError carries the HTTP status and machine code for errors that are
// surfaced to the caller. Adapter and ranking failures are recovered
// inside their components and never become an AppError.
type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

func NewValidation(msg string) *AppError {
	return &AppError{Status: 400, Code: CodeValidation, Message: msg}
}

func NewMissingCredentials(msg string) *AppError {
	return &AppError{Status: 400, Code: CodeMissingCredentials, Message: msg}
}

// NewIntegrationMissing is raised before any fan-out when a provider
// flagged mandatory for the request is not connected.
func NewIntegrationMissing(provider string) *AppError {
	return &AppError{
		Status:  400,
		Code:    CodeIntegrationMissing,
		Message: fmt.Sprintf("%s account connection required", provider),
	}
}

func NewAuth() *AppError {
	return &AppError{Status: 401, Message: "Authentication required"}
}

func NewInternal() *AppError {
	return &AppError{
		Status:  500,
		Code:    CodeInternal,
		Message: "An unexpected error occurred while processing your search. Please try again.",
	}
}

// AsAppError unwraps err to an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
