package mcp

import (
	"errors"
	"fmt"
	"time"
)

// NotConfiguredError is returned when a call targets an upstream without a URL.
type NotConfiguredError struct {
	// Upstream is the upstream name ("data", "publish").
	Upstream string

	// Message names the missing setting the way operators know it.
	Message string
}

// Error implements the error interface.
func (e *NotConfiguredError) Error() string {
	return e.Message
}

// UpstreamError is returned when an upstream answers with a non-2xx status.
type UpstreamError struct {
	Upstream   string
	Method     string
	StatusCode int

	// Status is the status text (e.g. "Bad Gateway").
	Status string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s MCP call failed: %d %s", upstreamLabel(e.Upstream), e.StatusCode, e.Status)
}

// upstreamLabel names an upstream the way failure messages refer to it.
func upstreamLabel(name string) string {
	if name == "publish" {
		return "GitHub"
	}
	return "Remote"
}

// TransportError is returned when the upstream could not be reached.
type TransportError struct {
	Upstream string
	Method   string
	Cause    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream %q call %q failed: %v", e.Upstream, e.Method, e.Cause)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// TimeoutError is returned when a call exceeds the upstream's configured timeout.
type TimeoutError struct {
	Upstream string
	Method   string
	Timeout  time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %q call %q timed out after %s", e.Upstream, e.Method, e.Timeout)
}

// ParseError is returned when a 2xx response body is not valid JSON.
type ParseError struct {
	Upstream string
	Method   string

	// Snippet is the beginning of the offending body.
	Snippet string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("upstream %q call %q returned invalid JSON: %q", e.Upstream, e.Method, e.Snippet)
}

// ToolError is returned when a streamable-http upstream reports that the
// tool itself failed.
type ToolError struct {
	Upstream string
	Method   string
	Message  string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tool %q on upstream %q reported an error", e.Method, e.Upstream)
	}
	return fmt.Sprintf("tool %q on upstream %q reported an error: %s", e.Method, e.Upstream, e.Message)
}

// StatusCode extracts the upstream HTTP status from err, or 0.
func StatusCode(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}

// IsNotConfigured reports whether err stems from a missing upstream URL.
func IsNotConfigured(err error) bool {
	var nc *NotConfiguredError
	return errors.As(err, &nc)
}
