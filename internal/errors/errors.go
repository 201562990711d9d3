package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// With returns a copy of e carrying details and, when message is not empty,
// a more specific message. Status and error code are kept.
func (e *APIError) With(message string, details interface{}) *APIError {
	if message == "" {
		message = e.Message
	}
	return NewWithDetails(e.StatusCode, e.ErrorCode, message, details)
}

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrMissingParameter = New(http.StatusBadRequest, "MISSING_PARAMETER", "Required parameter is missing")
	ErrInvalidParameter = New(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid parameter value")

	// 401 Unauthorized
	ErrUnauthorized       = New(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect password")
	ErrSessionExpired     = New(http.StatusUnauthorized, "SESSION_EXPIRED", "Session expired, log in again")

	// 404 Not Found
	ErrReportNotFound = New(http.StatusNotFound, "REPORT_NOT_FOUND", "No report has been generated in this session")

	// 413 Payload Too Large
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Uploaded files exceed the size limit")

	// 415 Unsupported Media Type
	ErrUnsupportedFile = New(http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE", "Only .xlsx and .csv files are accepted")

	// 422 Unprocessable Entity
	ErrUnreadableFile = New(http.StatusUnprocessableEntity, "UNREADABLE_FILE", "Uploaded file could not be read")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	// 500 Internal Server Error
	ErrExportFailed = New(http.StatusInternalServerError, "EXPORT_FAILED", "Report export failed")

	// 503 Service Unavailable
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
)

// problemTypes maps error codes to the problem type URI of the response.
var problemTypes = map[string]string{
	ErrInvalidRequest.ErrorCode:     TypeValidation,
	ErrValidationFailed.ErrorCode:   TypeValidation,
	ErrMissingParameter.ErrorCode:   TypeValidation,
	ErrInvalidParameter.ErrorCode:   TypeValidation,
	ErrUnauthorized.ErrorCode:       TypeUnauthorized,
	ErrInvalidCredentials.ErrorCode: TypeUnauthorized,
	ErrSessionExpired.ErrorCode:     TypeSessionExpired,
	ErrReportNotFound.ErrorCode:     TypeReportNotFound,
	ErrPayloadTooLarge.ErrorCode:    TypePayloadTooLarge,
	ErrUnsupportedFile.ErrorCode:    TypeUnsupportedFile,
	ErrUnreadableFile.ErrorCode:     TypeUnreadableFile,
	ErrRateLimitExceeded.ErrorCode:  TypeRateLimit,
	ErrServiceUnavailable.ErrorCode: TypeServiceDown,
}

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return ErrInvalidRequest.With("", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return ErrValidationFailed.With("", ValidationError{Field: field, Message: message})
}

// InvalidParameter reports a query parameter outside its allowed values.
func InvalidParameter(param, message string) *APIError {
	return ErrInvalidParameter.With(message, ValidationError{Field: param, Message: message})
}

// MissingUpload reports a required multipart file field that was not sent.
func MissingUpload(field string) *APIError {
	return ErrMissingParameter.With(fmt.Sprintf("file field %q is required", field),
		ValidationError{Field: field, Message: "required"})
}

// UnreadableUpload reports an uploaded file that could not be parsed as a table.
func UnreadableUpload(field string, err error) *APIError {
	return ErrUnreadableFile.With(fmt.Sprintf("could not read %s", field), err.Error())
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return ErrValidationFailed.With("", ValidationErrors{Errors: errors})
}
