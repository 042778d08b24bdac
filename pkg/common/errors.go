package common

import (
	"errors"
	"net/http"
)

// Common error types
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrConflict       = errors.New("resource conflict")
	ErrValidation     = errors.New("validation error")
)

// Stable error codes surfaced to clients. UIs key their localisation on
// these, so they must never change.
const (
	CodeAlreadyInStatus    = "alreadyInStatus"
	CodeInvalidTransition  = "invalidTransition"
	CodeTerminalState      = "terminalState"
	CodeNotFound           = "notFound"
	CodeInvalidPrice       = "invalidPrice"
	CodeBelowMinimumMargin = "belowMinimumMargin"
	CodeInvalidConfig      = "invalidConfig"
	CodeDuplicateReference = "duplicateReference"
	CodeInvalidRequest     = "invalidRequest"
	CodeUnknownContact     = "unknownContact"
)

// AppError represents an application error with HTTP status code and an
// optional stable error code for clients.
type AppError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithErrorCode attaches a stable error code and returns the error.
func (e *AppError) WithErrorCode(errorCode string) *AppError {
	e.ErrorCode = errorCode
	return e
}

// Common error constructors
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:      http.StatusNotFound,
		ErrorCode: CodeNotFound,
		Message:   message,
		Err:       err,
	}
}

func NewBadRequestError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     err,
	}
}

func NewInternalServerError(message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     ErrInternalServer,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
		Err:     ErrConflict,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:      http.StatusBadRequest,
		ErrorCode: CodeInvalidRequest,
		Message:   message,
		Err:       ErrValidation,
	}
}

// NewUnprocessableError builds a 422 with a stable error code, used for
// domain rule violations (invalid transition, margin floor, bad override).
func NewUnprocessableError(errorCode, message string) *AppError {
	return &AppError{
		Code:      http.StatusUnprocessableEntity,
		ErrorCode: errorCode,
		Message:   message,
		Err:       ErrValidation,
	}
}
