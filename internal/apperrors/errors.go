// internal/apperrors/errors.go

// Package apperrors defines the outcomes the marketplace model reports to
// its callers. None of them is retried by the model itself.
package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type Kind string

const (
	KindAuthorizationDenied Kind = "authorization_denied"
	KindIntegrityViolation  Kind = "integrity_violation"
	KindNotFound            Kind = "not_found"
	KindBadRequest          Kind = "bad_request"
	KindUnauthenticated     Kind = "unauthenticated"
	KindUnavailable         Kind = "unavailable"
)

// Violation classifies why an otherwise authorized write was rejected.
type Violation string

const (
	ViolationOutOfRange        Violation = "out_of_range"
	ViolationInvalidEnum       Violation = "invalid_enum"
	ViolationMissingField      Violation = "missing_field"
	ViolationDuplicate         Violation = "duplicate"
	ViolationMissingReference  Violation = "missing_reference"
	ViolationInvalidTransition Violation = "invalid_transition"
	ViolationSubtotalMismatch  Violation = "subtotal_mismatch"
	ViolationTotalMismatch     Violation = "total_mismatch"
	ViolationInvalidReference  Violation = "invalid_reference"
)

// AppError is implemented by every error the model returns on purpose.
type AppError interface {
	error
	Kind() Kind
	HTTPCode() int
	ErrorCode() string
	Message() string
	Details() string
}

type BaseError struct {
	kind      Kind
	httpCode  int
	errorCode string
	message   string
	details   string
	violation Violation
	field     string
}

func NewBaseError(kind Kind, httpCode int, errorCode, message string) *BaseError {
	return &BaseError{
		kind:      kind,
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
	}
}

func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}
	return e.message
}

func (e *BaseError) Kind() Kind           { return e.kind }
func (e *BaseError) HTTPCode() int        { return e.httpCode }
func (e *BaseError) ErrorCode() string    { return e.errorCode }
func (e *BaseError) Message() string      { return e.message }
func (e *BaseError) Details() string      { return e.details }
func (e *BaseError) Violation() Violation { return e.violation }
func (e *BaseError) Field() string        { return e.field }

// Is matches on kind and error code so that copies made by WithDetails
// still satisfy errors.Is against the predefined values.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return e.kind == t.kind && e.errorCode == t.errorCode
}

// WithDetails returns a copy carrying extra detail text.
func (e *BaseError) WithDetails(details string) *BaseError {
	cp := *e
	cp.details = details
	return &cp
}

// Predefined errors
var (
	ErrAuthorizationDenied = NewBaseError(KindAuthorizationDenied, http.StatusForbidden,
		"AUTHORIZATION_DENIED", "operation not permitted")

	ErrNotFound = NewBaseError(KindNotFound, http.StatusNotFound,
		"NOT_FOUND", "record not found")

	ErrIntegrityViolation = NewBaseError(KindIntegrityViolation, http.StatusUnprocessableEntity,
		"INTEGRITY_VIOLATION", "write rejected by integrity check")

	ErrBadRequest = NewBaseError(KindBadRequest, http.StatusBadRequest,
		"BAD_REQUEST", "invalid request")

	ErrInvalidCredentials = NewBaseError(KindUnauthenticated, http.StatusUnauthorized,
		"INVALID_CREDENTIALS", "invalid email or password")

	ErrAccountInactive = NewBaseError(KindUnauthenticated, http.StatusUnauthorized,
		"ACCOUNT_INACTIVE", "account is not active")

	ErrEmailTaken = NewBaseError(KindIntegrityViolation, http.StatusConflict,
		"EMAIL_TAKEN", "an account with this email already exists")

	ErrServiceUnavailable = NewBaseError(KindUnavailable, http.StatusServiceUnavailable,
		"SERVICE_UNAVAILABLE", "service not configured")
)

// Integrity builds a classified integrity violation for one field.
func Integrity(v Violation, field, format string, args ...interface{}) *BaseError {
	cp := *ErrIntegrityViolation
	cp.violation = v
	cp.field = field
	cp.details = fmt.Sprintf(format, args...)
	return &cp
}

// BadRequest builds a malformed-input error.
func BadRequest(format string, args ...interface{}) *BaseError {
	return ErrBadRequest.WithDetails(fmt.Sprintf(format, args...))
}

// Denied reports whether err is an authorization denial.
func Denied(err error) bool {
	return hasKind(err, KindAuthorizationDenied)
}

// IsIntegrity reports whether err is an integrity violation.
func IsIntegrity(err error) bool {
	return hasKind(err, KindIntegrityViolation)
}

func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// ViolationOf extracts the violation reason, if err carries one.
func ViolationOf(err error) (Violation, bool) {
	var be *BaseError
	if stderrors.As(err, &be) && be.violation != "" {
		return be.violation, true
	}
	return "", false
}

// As returns the AppError in err's chain.
func As(err error) (AppError, bool) {
	var ae AppError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func hasKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind() == kind
}

// Wrap annotates storage failures with a stack trace and context message.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}
