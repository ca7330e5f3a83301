package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Request validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Authoring specific errors
	CodeGroupNotFound     ErrorCode = "GROUP_NOT_FOUND"
	CodePassageNotFound   ErrorCode = "PASSAGE_NOT_FOUND"
	CodeGenerationBlocked ErrorCode = "GENERATION_BLOCKED"
	CodeSaveBlocked       ErrorCode = "SAVE_BLOCKED"
	CodeUnsavedChanges    ErrorCode = "UNSAVED_CHANGES"
	CodeUploadFailed      ErrorCode = "UPLOAD_FAILED"
	CodeUnknownGroupType  ErrorCode = "UNKNOWN_GROUP_TYPE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
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
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithContext attaches detail values surfaced under "details" in API responses.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field-level failures for one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Error()
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("invalid format: %q", value)}
}

// Helper constructors for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewGroupNotFoundError(groupID string) *DomainError {
	return NewError(CodeGroupNotFound, fmt.Sprintf("Question group not found with ID: %s", groupID), nil)
}

func NewPassageNotFoundError(passageID string) *DomainError {
	return NewError(CodePassageNotFound, fmt.Sprintf("Passage not found with ID: %s", passageID), nil)
}

// NewGenerationBlockedError signals that the document does not satisfy the
// generate precondition. This is a user-correctable refusal, not a fault.
func NewGenerationBlockedError(reason string) *DomainError {
	return NewError(CodeGenerationBlocked, reason, nil)
}

// NewSaveBlockedError signals that the question set is not saveable yet.
func NewSaveBlockedError(reason string) *DomainError {
	return NewError(CodeSaveBlocked, reason, nil)
}

// NewUnsavedChangesError signals that a cancel would discard edits and the
// caller must confirm (re-invoke with force).
func NewUnsavedChangesError() *DomainError {
	return NewError(CodeUnsavedChanges, "There are unsaved changes; confirm before discarding", nil)
}

func NewUploadFailedError(message string, cause error) *DomainError {
	return NewError(CodeUploadFailed, message, cause)
}

func NewUnknownGroupTypeError(groupType string) *DomainError {
	return NewError(CodeUnknownGroupType, fmt.Sprintf("Unknown question group type: %s", groupType), nil)
}
