package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"voygen/gateway/pkg/config"
)

// maxResponseBytes bounds how much of an upstream response is read.
const maxResponseBytes = 32 << 20

// rpcRequest is the body posted to the call endpoint.
type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

// RPCClient calls an upstream by posting {"method", "params"} to its call
// endpoint and returning the response body as-is. It never retries.
type RPCClient struct {
	name     string
	endpoint string
	token    string
	timeout  time.Duration
	client   *http.Client
	health   healthTracker
}

// NewRPCClient creates an RPC caller for cfg.
func NewRPCClient(name string, cfg config.UpstreamConfig, httpClient *http.Client) *RPCClient {
	c := &RPCClient{
		name:     name,
		endpoint: strings.TrimRight(cfg.URL, "/") + cfg.CallPath,
		token:    cfg.AuthToken,
		timeout:  cfg.Timeout,
		client:   httpClient,
	}
	c.health.health = Health{Configured: true, Transport: config.TransportRPC}
	return c
}

// Name implements Caller.
func (c *RPCClient) Name() string { return c.name }

// Endpoint returns the URL calls are posted to.
func (c *RPCClient) Endpoint() string { return c.endpoint }

// Health implements Caller.
func (c *RPCClient) Health() Health { return c.health.snapshot() }

// Close implements Caller.
func (c *RPCClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// Call implements Caller.
func (c *RPCClient) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	result, err := c.call(ctx, method, params)
	c.health.record(err)
	return result, err
}

func (c *RPCClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if c.timeout > 0 && errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return nil, &TimeoutError{Upstream: c.name, Method: method, Timeout: c.timeout}
		}
		return nil, &TransportError{Upstream: c.name, Method: method, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Upstream: c.name, Method: method, Cause: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Upstream:   c.name,
			Method:     method,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
		}
	}

	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, &ParseError{Upstream: c.name, Method: method, Snippet: snippet(data)}
	}
	return json.RawMessage(data), nil
}

// statusText returns the reason phrase of resp, falling back to the
// standard text for its code.
func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func snippet(data []byte) string {
	const max = 120
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
