package types

import "net/http"

// ErrorResponse is the JSON body of every error the gateway answers with.
type ErrorResponse struct {
	// Error is a short description of what failed.
	Error string `json:"error"`

	// Message carries detail: the underlying error in development, a generic
	// hint otherwise. Omitted for client input errors.
	Message string `json:"message,omitempty"`
}

// NotFoundResponse is returned for routes that do not exist.
type NotFoundResponse struct {
	Error  string `json:"error"`
	Path   string `json:"path"`
	Method string `json:"method"`
}

// Error texts shared across handlers.
const (
	// ErrorInternal is used for recovered panics and unmapped failures.
	ErrorInternal = "Internal server error"

	// ErrorNotFound is used for unknown routes.
	ErrorNotFound = "Endpoint not found"

	// ErrorInvalidJSON is used when the request body is not a JSON object.
	ErrorInvalidJSON = "Invalid JSON body"

	// ErrorInvalidForm is used when a urlencoded body cannot be decoded.
	ErrorInvalidForm = "Invalid form body"

	// ErrorBodyTooLarge is used when the request body exceeds the limit.
	ErrorBodyTooLarge = "Request body too large"

	// MessageGeneric replaces internal error details outside development.
	MessageGeneric = "Something went wrong"
)

// Error code constants for request problems.
const (
	// CodeMissingField indicates a required field is missing.
	CodeMissingField = "missing_field"

	// CodeInvalidValue indicates a field has an invalid value.
	CodeInvalidValue = "invalid_value"

	// CodeInvalidJSON indicates the request body is not valid JSON.
	CodeInvalidJSON = "invalid_json"

	// CodeRequestTooLarge indicates the request payload is too large.
	CodeRequestTooLarge = "request_too_large"
)

// NewErrorResponse creates an error body.
func NewErrorResponse(err, message string) *ErrorResponse {
	return &ErrorResponse{Error: err, Message: message}
}

// NewServerError creates the body for an internal failure. detail is
// exposed only when expose is set.
func NewServerError(err string, detail string, expose bool) *ErrorResponse {
	if !expose || detail == "" {
		detail = MessageGeneric
	}
	return NewErrorResponse(err, detail)
}

// HTTPStatusCode returns the status for a request error code.
func HTTPStatusCode(code string) int {
	switch code {
	case CodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeMissingField, CodeInvalidValue, CodeInvalidJSON:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
