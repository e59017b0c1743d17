package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid                ErrorCode = "invalid"
	ErrorForbidden              ErrorCode = "forbidden"
	ErrorNotFound               ErrorCode = "not_found"
	ErrorConflict               ErrorCode = "conflict"
	ErrorUnauthorized           ErrorCode = "unauthorized"
	ErrorEncryptionUnavailable  ErrorCode = "encryption_unavailable"
	ErrorIntegrity              ErrorCode = "integrity"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewEncryptionUnavailableError(msg string) error {
	return &ServiceError{Code: ErrorEncryptionUnavailable, Message: msg}
}

// NewIntegrityError marks a sealed identity blob that failed authentication.
// Callers must treat it as tampering, never as recoverable garbage.
func NewIntegrityError(msg string) error {
	return &ServiceError{Code: ErrorIntegrity, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HasCode reports whether err is a ServiceError with the given code.
func HasCode(err error, code ErrorCode) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == code
}
