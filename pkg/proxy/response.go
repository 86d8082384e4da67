package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"voygen/gateway/pkg/proxy/types"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
// HTML characters are not escaped, so relayed upstream documents keep their
// markup as sent.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes an error body with the given status.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, statusCode, errResp)
}

// WriteNotFound writes the 404 body for an unknown route.
func WriteNotFound(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSONResponse(w, http.StatusNotFound, &types.NotFoundResponse{
		Error:  types.ErrorNotFound,
		Path:   r.URL.Path,
		Method: r.Method,
	})
}

// NotFoundHandler answers every request with the 404 body.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(WriteNotFound)
}
