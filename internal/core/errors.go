// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrConflict        = errors.New("conflict")
	ErrForeignKey      = errors.New("foreign key violation")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrTokenRevoked    = errors.New("token revoked")
	ErrInvalidPassword = errors.New("invalid credentials")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func NotFoundMessage(message string) *AppError {
	return NewAppError(ErrNotFound, message, http.StatusNotFound, "NOT_FOUND")
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrConflict, message, http.StatusConflict, "CONFLICT")
}

func ValidationError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		"VALIDATION_ERROR",
	)
}

func InvalidCredentialsError() *AppError {
	return NewAppError(
		ErrInvalidPassword,
		"Incorrect email or password",
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"Token has expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"Could not validate credentials",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		ErrTokenRevoked,
		"Token has been revoked",
		http.StatusUnauthorized,
		"TOKEN_REVOKED",
	)
}

func InternalError(err error) *AppError {
	return NewAppError(
		err,
		"Internal server error",
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
	)
}

// statusFor maps bare sentinels that reached the transport without an
// AppError wrapper.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "Forbidden"
	case errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, ErrTokenRevoked):
		return http.StatusUnauthorized, "TOKEN_REVOKED", "Token has been revoked"
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials"
	case errors.Is(err, ErrDuplicateKey):
		return http.StatusConflict, "DUPLICATE", "Resource already exists"
	case errors.Is(err, ErrConflict), errors.Is(err, ErrForeignKey):
		return http.StatusConflict, "CONFLICT", "Conflict"
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
}
