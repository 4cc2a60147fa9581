// Package apperr defines the service's tagged error type.
//
// Every failure that crosses a package boundary carries an explicit Kind so
// handlers can map it to an HTTP status and a machine-readable code without
// inspecting message strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindInvalidCredentials
	KindUnauthorized
	KindTokenMissing
	KindTokenExpired
	KindTokenMalformed
	KindTokenType
	KindConfiguration
	KindHashing
)

// Machine-readable codes returned to clients.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeDuplicate          = "ALREADY_EXISTS"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTokenMissing       = "TOKEN_MISSING"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidTokenType   = "INVALID_TOKEN_TYPE"
	CodeInternal           = "INTERNAL_ERROR"
)

var kindNames = map[Kind]string{
	KindInternal:           "internal",
	KindValidation:         "validation",
	KindDuplicate:          "duplicate",
	KindNotFound:           "not_found",
	KindInvalidCredentials: "invalid_credentials",
	KindUnauthorized:       "unauthorized",
	KindTokenMissing:       "token_missing",
	KindTokenExpired:       "token_expired",
	KindTokenMalformed:     "token_malformed",
	KindTokenType:          "token_type",
	KindConfiguration:      "configuration",
	KindHashing:            "hashing",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the tagged error carried through the service.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the default code for kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Code: defaultCode(kind), Message: message}
}

// Wrap creates an Error that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Code: defaultCode(kind), Message: message, Err: err}
}

// WithDetails attaches per-field messages.
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

// Validation is shorthand for a KindValidation error.
func Validation(message string, details ...string) *Error {
	return New(KindValidation, message).WithDetails(details...)
}

// NotFound is shorthand for a KindNotFound error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the Kind of err. Untagged errors are KindInternal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindDuplicate:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidCredentials, KindUnauthorized, KindTokenMissing,
		KindTokenExpired, KindTokenMalformed, KindTokenType:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func defaultCode(kind Kind) string {
	switch kind {
	case KindValidation:
		return CodeValidation
	case KindDuplicate:
		return CodeDuplicate
	case KindNotFound:
		return CodeNotFound
	case KindInvalidCredentials:
		return CodeInvalidCredentials
	case KindTokenMissing:
		return CodeTokenMissing
	case KindTokenExpired:
		return CodeTokenExpired
	case KindUnauthorized, KindTokenMalformed:
		return CodeInvalidToken
	case KindTokenType:
		return CodeInvalidTokenType
	default:
		return CodeInternal
	}
}
