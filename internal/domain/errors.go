package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"

	// Session specific errors
	CodeSessionActive   ErrorCode = "SESSION_ACTIVE"
	CodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	CodeSessionClosed   ErrorCode = "SESSION_CLOSED"
	CodeInvalidEvent    ErrorCode = "INVALID_EVENT"
	CodeStoreFailure    ErrorCode = "STORE_FAILURE"
	CodeSummarizer      ErrorCode = "SUMMARIZER_ERROR"
	CodeRender          ErrorCode = "RENDER_ERROR"
	CodeReportMissing   ErrorCode = "REPORT_MISSING"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewSessionActiveError(kind SessionKind) *DomainError {
	return NewError(CodeSessionActive, fmt.Sprintf("a %s session is already in progress", kind), nil)
}

func NewSessionNotFoundError(kind SessionKind) *DomainError {
	return NewError(CodeSessionNotFound, fmt.Sprintf("no %s session in progress", kind), nil)
}

func NewSessionClosedError(phase string) *DomainError {
	return NewError(CodeSessionClosed, fmt.Sprintf("session no longer accepts events (phase %s)", phase), nil)
}

func NewInvalidEventError(message string) *DomainError {
	return NewError(CodeInvalidEvent, message, nil)
}

func NewStoreError(message string, err error) *DomainError {
	return NewError(CodeStoreFailure, message, err)
}

func NewSummarizerError(err error) *DomainError {
	return NewError(CodeSummarizer, "Failed to process with summarizer", err)
}

func NewRenderError(message string, err error) *DomainError {
	return NewError(CodeRender, message, err)
}

func NewReportMissingError(sessionID int64) *DomainError {
	return NewError(CodeReportMissing, fmt.Sprintf("no report available for session %d", sessionID), nil)
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field errors of a single request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
