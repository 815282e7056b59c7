// internal/apperror/apperror.go

// Package apperror defines the application error taxonomy. Services return
// typed errors; handlers map them to HTTP responses without string matching.
package apperror

import (
	"errors"
	"net/http"
)

type ErrorType int

const (
	InternalError ErrorType = iota
	DatabaseError
	ValidationError
	DuplicateEmailError
	InvalidCredentialsError
	UnauthorizedError
	NotFoundError
	ForbiddenError
	AlreadyPurchasedError
	MissingFileError
	FileUnavailableError
)

type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error type to the HTTP status the REST contract expects.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError, DuplicateEmailError, AlreadyPurchasedError, MissingFileError:
		return http.StatusBadRequest
	case InvalidCredentialsError, UnauthorizedError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError, FileUnavailableError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine-readable error kind surfaced to clients.
func (e *AppError) Code() string {
	switch e.Type {
	case ValidationError:
		return "VALIDATION_ERROR"
	case DuplicateEmailError:
		return "DUPLICATE_EMAIL"
	case InvalidCredentialsError:
		return "INVALID_CREDENTIALS"
	case UnauthorizedError:
		return "UNAUTHORIZED"
	case NotFoundError:
		return "NOT_FOUND"
	case ForbiddenError:
		return "FORBIDDEN"
	case AlreadyPurchasedError:
		return "ALREADY_PURCHASED"
	case MissingFileError:
		return "MISSING_FILE"
	case FileUnavailableError:
		return "FILE_UNAVAILABLE"
	case DatabaseError:
		return "DATABASE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

func New(errType ErrorType, message string, underlying error) *AppError {
	return &AppError{Type: errType, Message: message, Err: underlying}
}

func NewValidation(message string) *AppError {
	return New(ValidationError, message, nil)
}

func NewDuplicateEmail(message string) *AppError {
	return New(DuplicateEmailError, message, nil)
}

func NewInvalidCredentials(message string) *AppError {
	return New(InvalidCredentialsError, message, nil)
}

func NewUnauthorized(message string) *AppError {
	return New(UnauthorizedError, message, nil)
}

func NewNotFound(message string) *AppError {
	return New(NotFoundError, message, nil)
}

func NewForbidden(message string) *AppError {
	return New(ForbiddenError, message, nil)
}

func NewAlreadyPurchased(message string) *AppError {
	return New(AlreadyPurchasedError, message, nil)
}

func NewMissingFile(message string) *AppError {
	return New(MissingFileError, message, nil)
}

func NewFileUnavailable(message string) *AppError {
	return New(FileUnavailableError, message, nil)
}

func NewDatabase(message string, underlying error) *AppError {
	return New(DatabaseError, message, underlying)
}

func NewInternal(message string, underlying error) *AppError {
	return New(InternalError, message, underlying)
}

// FromError extracts an *AppError from an error chain.
func FromError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	if ae, ok := FromError(err); ok {
		return ae.Type == errType
	}
	return false
}
