package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBody       ErrorCode = "INVALID_BODY"
	ErrCodeInvalidPermission ErrorCode = "INVALID_PERMISSION"
	ErrCodeInvalidBulkAction ErrorCode = "INVALID_BULK_ACTION"
	ErrCodeSelfTarget        ErrorCode = "SELF_TARGET"
	ErrCodeEmailTaken        ErrorCode = "EMAIL_TAKEN"
	ErrCodeInvalidEmail      ErrorCode = "INVALID_EMAIL"
	ErrCodePasswordTooShort  ErrorCode = "PASSWORD_TOO_SHORT"
	ErrCodePasswordTooLong   ErrorCode = "PASSWORD_TOO_LONG"
	ErrCodeCurrentPassword   ErrorCode = "CURRENT_PASSWORD_INVALID"
	ErrCodeInvalidTimeRange  ErrorCode = "INVALID_TIME_RANGE"
	ErrCodeInvalidStatus     ErrorCode = "INVALID_STATUS"

	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	ErrCodeRoomNotFound        ErrorCode = "ROOM_NOT_FOUND"
	ErrCodeReservationNotFound ErrorCode = "RESERVATION_NOT_FOUND"
	ErrCodePageNotFound        ErrorCode = "PAGE_NOT_FOUND"

	ErrCodeRoomNameTaken       ErrorCode = "ROOM_NAME_TAKEN"
	ErrCodeReservationConflict ErrorCode = "RESERVATION_CONFLICT"

	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserNotVerified    ErrorCode = "USER_NOT_VERIFIED"
	ErrCodeInvalidSession     ErrorCode = "INVALID_SESSION"
	ErrCodeInsufficientPerms  ErrorCode = "INSUFFICIENT_PERMISSIONS"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError is the error every service hands back to the transport layer.
// Cause is logged but never serialised.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage flattens validation details into a single client-facing line.
func (e *AppError) GetDetailedMessage() string {
	if details, ok := e.Details.(ValidationErrors); ok && len(details.Errors) > 0 {
		messages := make([]string, len(details.Errors))
		for i, fe := range details.Errors {
			messages[i] = fe.Message
		}
		return strings.Join(messages, "; ")
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so that sentinel errors survive WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy carrying cause, leaving shared sentinels untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthenticatedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrUnauthenticated    = NewUnauthenticatedError("authentication required", ErrCodeUnauthenticated)
	ErrInvalidSession     = NewUnauthenticatedError("invalid or expired session", ErrCodeInvalidSession)
	ErrInvalidCredentials = NewUnauthenticatedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrUserNotVerified    = NewForbiddenError("account is not verified", ErrCodeUserNotVerified)
	ErrForbidden          = NewForbiddenError("insufficient permissions", ErrCodeInsufficientPerms)
	ErrInvalidBody        = NewValidationError("invalid request body", ErrCodeInvalidBody)
	ErrSelfTarget         = NewValidationError("you cannot change your own permissions or verification", ErrCodeSelfTarget)

	ErrUserNotFound        = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrRoomNotFound        = NewNotFoundError("room not found", ErrCodeRoomNotFound)
	ErrReservationNotFound = NewNotFoundError("reservation not found", ErrCodeReservationNotFound)
)

// IsAppError unwraps err looking for an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e.GetDetailedMessage(), Code: e.Code}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
