package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"voygen/gateway/pkg/proxy/types"
)

// RequestIDHeader is the HTTP header for request ID propagation.
const RequestIDHeader = "X-Request-ID"

// Body is a decoded JSON request object. Values keep their original bytes so
// they can be forwarded upstream unchanged.
type Body map[string]json.RawMessage

// ParseJSONBody reads the request body as a JSON object. Bodies sent as
// application/x-www-form-urlencoded are decoded into the same shape, with
// bracketed keys nested the way qs does (see parseFormBody).
//
// An empty body or a JSON value that is not an object yields an empty Body,
// so handlers report the missing fields. Malformed JSON yields a
// RequestError with CodeInvalidJSON; a body over the http.MaxBytesReader
// limit yields one with CodeRequestTooLarge.
//
// Example usage:
//
//	body, err := ParseJSONBody(r)
//	if err != nil {
//	    WriteError(w, r, "Failed to extract hotels", err, false)
//	    return
//	}
func ParseJSONBody(r *http.Request) (Body, error) {
	if r.Body == nil {
		return Body{}, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &RequestError{
				Message: types.ErrorBodyTooLarge,
				Code:    types.CodeRequestTooLarge,
				Param:   "body",
			}
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Body{}, nil
	}
	if isFormRequest(r) {
		return parseFormBody(data)
	}
	if !json.Valid(data) {
		return nil, &RequestError{
			Message: types.ErrorInvalidJSON,
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}
	if data[0] != '{' {
		return Body{}, nil
	}

	var body Body
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &RequestError{
			Message: types.ErrorInvalidJSON,
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}
	return body, nil
}

// Has reports whether key is present with a truthy value: a non-empty
// string, a non-zero number, true, or any array or object.
func (b Body) Has(key string) bool {
	return Truthy(b[key])
}

// IsArray reports whether key holds a JSON array.
func (b Body) IsArray(key string) bool {
	raw := bytes.TrimSpace(b[key])
	return len(raw) > 0 && raw[0] == '['
}

// Len returns the number of elements of the array at key, or 0.
func (b Body) Len(key string) int {
	var items []json.RawMessage
	if err := json.Unmarshal(b[key], &items); err != nil {
		return 0
	}
	return len(items)
}

// String returns the value at key as text: strings unquoted, other values
// in their JSON form. Missing and null values yield "".
func (b Body) String(key string) string {
	raw := bytes.TrimSpace(b[key])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// StringOr returns String(key) when the value is truthy, otherwise def.
func (b Body) StringOr(key, def string) string {
	if !b.Has(key) {
		return def
	}
	return b.String(key)
}

// Value returns the raw value at key for forwarding, or nil when missing.
// A nil json.RawMessage is encoded as null.
func (b Body) Value(key string) json.RawMessage {
	return b[key]
}

// ValueOr returns the raw value at key when truthy, otherwise def encoded
// as JSON.
func (b Body) ValueOr(key string, def any) json.RawMessage {
	if b.Has(key) {
		return b[key]
	}
	data, err := json.Marshal(def)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}

// Default returns the raw value at key whenever the key is present, falsy
// values and null included. def, encoded as JSON, is used only when the key
// is absent.
func (b Body) Default(key string, def any) json.RawMessage {
	if raw, ok := b[key]; ok {
		return raw
	}
	data, err := json.Marshal(def)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}

// Truthy applies JavaScript truthiness to a JSON value.
func Truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '[', '{':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		return s != ""
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f != 0
	}
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
// If the header is not present, it returns an empty string.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status for the error.
func (e *RequestError) StatusCode() int {
	return types.HTTPStatusCode(e.Code)
}

// ToErrorResponse converts a RequestError to an error body.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewErrorResponse(e.Message, "")
}

// MissingFields returns the RequestError for absent required fields.
// The text lists the fields the way the route documents them.
func MissingFields(fields string, plural bool) *RequestError {
	prefix := "Missing required field: "
	if plural {
		prefix = "Missing required fields: "
	}
	return &RequestError{
		Message: prefix + fields,
		Code:    types.CodeMissingField,
		Param:   fields,
	}
}

// InvalidValue returns the RequestError for a present but unusable field.
func InvalidValue(param, message string) *RequestError {
	return &RequestError{
		Message: message,
		Code:    types.CodeInvalidValue,
		Param:   param,
	}
}
