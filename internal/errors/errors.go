package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeRefreshTokenNotFound = "REFRESH_TOKEN_NOT_FOUND"
	ErrCodeTokenExpired         = "TOKEN_EXPIRED"
	ErrCodeExternalVerification = "EXTERNAL_VERIFICATION_FAILED"
	ErrCodeVerifierTimeout      = "VERIFIER_TIMEOUT"
	ErrCodeAccountDeactivated   = "ACCOUNT_DEACTIVATED"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Error kinds. Every error a service returns to a handler wraps exactly one of these.
var (
	ErrInvalidRequest       = stderrors.New("invalid request")
	ErrUnauthorized         = stderrors.New("unauthorized")
	ErrForbidden            = stderrors.New("forbidden")
	ErrNotFound             = stderrors.New("not found")
	ErrConflict             = stderrors.New("conflict")
	ErrExternalVerification = stderrors.New("external verification failed")
	ErrUpstreamTimeout      = stderrors.New("upstream timeout")
)

// Error is a classified domain error.
type Error struct {
	Kind    error
	Code    string
	Message string
	Field   string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// InvalidField reports a validation failure on a single input field.
func InvalidField(field, message string) *Error {
	return &Error{Kind: ErrInvalidRequest, Code: ErrCodeInvalidInput, Message: message, Field: field}
}

// Invalid reports a malformed request that is not tied to a single field.
func Invalid(message string) *Error {
	return newError(ErrInvalidRequest, ErrCodeInvalidInput, message)
}

// Unauthenticated reports a missing, invalid or expired credential. code may be empty.
func Unauthenticated(code, message string) *Error {
	if code == "" {
		code = ErrCodeUnauthorized
	}
	return newError(ErrUnauthorized, code, message)
}

func Denied(message string) *Error {
	return newError(ErrForbidden, ErrCodeForbidden, message)
}

func Missing(resource string) *Error {
	return newError(ErrNotFound, ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Conflicting(message string) *Error {
	return newError(ErrConflict, ErrCodeConflict, message)
}

// VerificationFailed carries the identity provider's reason for rejecting an assertion.
func VerificationFailed(reason string) *Error {
	return newError(ErrExternalVerification, ErrCodeExternalVerification, reason)
}

func VerifierTimeout() *Error {
	return newError(ErrUpstreamTimeout, ErrCodeVerifierTimeout, "identity provider did not respond in time")
}

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// FieldError is a single entry of a validation failure's details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case stderrors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrUnauthorized), stderrors.Is(err, ErrExternalVerification):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrConflict):
		return http.StatusConflict
	case stderrors.Is(err, ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error response. Unclassified errors become a logged 500.
func Respond(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		BadRequestWithDetails(c, "Invalid request body", ValidationDetails(verrs))
		return
	}

	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		body := NewAPIError(domainErr.Code, domainErr.Message)
		if domainErr.Field != "" {
			body.Details = []FieldError{{Field: domainErr.Field, Message: domainErr.Message}}
		}
		RespondWithError(c, StatusFor(domainErr), body)
		return
	}

	slog.Error("unhandled error",
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	InternalError(c, "")
}

// ValidationDetails converts validator errors into field-level details keyed by JSON name.
func ValidationDetails(verrs validator.ValidationErrors) []FieldError {
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return details
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "docurl":
		return "must start with http://, https:// or ftp://"
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}
