package proxy

import (
	"errors"
	"net/http"

	"voygen/gateway/pkg/proxy/types"
	"voygen/gateway/pkg/telemetry/logging"
)

// HandleError converts an error to its HTTP status and body.
//
// RequestErrors keep their own status and message. Every other error is a
// failure of the route: it becomes a 500 whose error field is failure and
// whose message is the error text only when expose is set.
//
// Example usage:
//
//	if err != nil {
//	    status, body := HandleError("Failed to list templates", err, cfg.IsDevelopment())
//	    WriteJSONResponse(w, status, body)
//	    return
//	}
func HandleError(failure string, err error, expose bool) (int, *types.ErrorResponse) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode(), reqErr.ToErrorResponse()
	}

	if failure == "" {
		failure = types.ErrorInternal
	}
	return http.StatusInternalServerError, types.NewServerError(failure, err.Error(), expose)
}

// WriteError logs err and writes the response HandleError maps it to.
// Client errors are logged at warn level, route failures at error level.
func WriteError(w http.ResponseWriter, r *http.Request, failure string, err error, expose bool) {
	status, body := HandleError(failure, err, expose)

	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(failure,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	} else {
		logger.Warn("rejected request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}

	_ = WriteJSONResponse(w, status, body)
}
