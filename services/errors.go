package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind classifies service failures so the HTTP layer can pick a status code
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindForbidden
	KindPrecondition
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "unexpected"
}

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned by every service operation that fails
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationError reports bad input, optionally with per-field details
func ValidationError(message string, details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message, Details: details}
}

// FieldInvalid is a ValidationError about a single field
func FieldInvalid(field, message string) *Error {
	return ValidationError(message, FieldError{Field: field, Message: message})
}

// Forbidden reports that the actor may not perform the operation
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

// PreconditionFailed reports a state that does not allow the operation
func PreconditionFailed(code, message string) *Error {
	return &Error{Kind: KindPrecondition, Code: code, Message: message}
}

// NotFound reports a missing entity
func NotFound(resource string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    strings.ToUpper(resource) + "_NOT_FOUND",
		Message: strings.ReplaceAll(resource, "_", " ") + " not found",
	}
}

// Conflict reports a uniqueness violation
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Unexpected wraps an infrastructure failure
func Unexpected(message string, err error) *Error {
	return &Error{Kind: KindUnexpected, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

// KindOf returns the kind of a service error, KindUnexpected for anything else
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err is a service error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// lookupError converts a failed lookup into NotFound or Unexpected
func lookupError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(resource)
	}
	return Unexpected("failed to load "+strings.ReplaceAll(resource, "_", " "), err)
}

// IsDuplicateKey reports whether err is a unique constraint violation
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// normalize turns any error leaving a transaction into a service error
func normalize(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if IsDuplicateKey(err) {
		return Conflict("DUPLICATE", "a conflicting record already exists")
	}
	return Unexpected("unexpected database error", err)
}
