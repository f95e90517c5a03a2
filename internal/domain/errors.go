package domain

import (
	"encoding/json"
	"errors"
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
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeConflict     ErrorCode = "CONFLICT"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Study specific errors
	CodeSetNotFound                 ErrorCode = "SET_NOT_FOUND"
	CodeSessionNotFound             ErrorCode = "SESSION_NOT_FOUND"
	CodeInsufficientData            ErrorCode = "INSUFFICIENT_DATA"
	CodeInsufficientDistinctAnswers ErrorCode = "INSUFFICIENT_DISTINCT_ANSWERS"
	CodeUploadLimitReached          ErrorCode = "UPLOAD_LIMIT_REACHED"
	CodeUnsupportedFile             ErrorCode = "UNSUPPORTED_FILE"

	// External dependencies
	CodeLLMServiceError ErrorCode = "LLM_SERVICE_ERROR"
	CodeStorageError    ErrorCode = "STORAGE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"details,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// WithContext attaches a detail entry that is returned to the client.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HasCode reports whether err is (or wraps) a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
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

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewConflictError(message string) *DomainError {
	return NewError(CodeConflict, message, nil)
}

func NewSetNotFoundError(setID string) *DomainError {
	return NewError(CodeSetNotFound, fmt.Sprintf("Flashcard set not found with ID: %s", setID), nil)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(CodeSessionNotFound, fmt.Sprintf("Quiz session not found or expired: %s", sessionID), nil)
}

// NewInsufficientDataError is returned when a set is too small to build a quiz from.
func NewInsufficientDataError(have, need int) *DomainError {
	return NewError(CodeInsufficientData,
		fmt.Sprintf("You need at least %d flashcards to take a quiz", need), nil).
		WithContext("flashcards", have).
		WithContext("required", need)
}

// NewInsufficientDistinctAnswersError is returned under the strict distractor policy
// when a question cannot be given three distinct wrong answers.
func NewInsufficientDistinctAnswersError(question string, available int) *DomainError {
	return NewError(CodeInsufficientDistinctAnswers,
		"Not enough distinct answers in this set to build four options", nil).
		WithContext("question", question).
		WithContext("distinct_distractors", available)
}

func NewUploadLimitError(limit int) *DomainError {
	return NewError(CodeUploadLimitReached,
		fmt.Sprintf("Free plan allows %d uploads. Upgrade to premium to upload more documents", limit), nil).
		WithContext("limit", limit)
}

func NewUnsupportedFileError(contentType string) *DomainError {
	return NewError(CodeUnsupportedFile, fmt.Sprintf("Unsupported file type: %s", contentType), nil).
		WithContext("content_type", contentType)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", err)
}

func NewStorageError(err error) *DomainError {
	return NewError(CodeStorageError, "Failed to access file storage", err)
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field errors so handlers can report them together.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Code: CodeMissingField, Message: field + " is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Code: CodeInvalidFormat, Message: field + " has an invalid format", Value: value}
}

func NewOutOfRangeError(field string, value interface{}, min, max int) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("%s must be between %d and %d", field, min, max),
		Value:   value,
	}
}
