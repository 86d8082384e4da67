package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcptransport "github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"voygen/gateway/pkg/config"
)

// ClientName and ClientVersion identify the gateway during MCP initialization.
var (
	ClientName    = "voygen-api"
	ClientVersion = "0.1.0"
)

// StreamableClient calls an upstream over MCP streamable HTTP, invoking each
// method as a tool. The session is created and initialized on first use and
// reused afterwards; a failed call drops it so the next call reconnects.
type StreamableClient struct {
	name       string
	url        string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	health     healthTracker

	mu     sync.Mutex
	client *mcpclient.Client
}

// NewStreamableClient creates a streamable-http caller for cfg.
func NewStreamableClient(name string, cfg config.UpstreamConfig, httpClient *http.Client) *StreamableClient {
	c := &StreamableClient{
		name:       name,
		url:        cfg.URL,
		token:      cfg.AuthToken,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
	}
	c.health.health = Health{Configured: true, Transport: config.TransportStreamableHTTP}
	return c
}

// Name implements Caller.
func (c *StreamableClient) Name() string { return c.name }

// Health implements Caller.
func (c *StreamableClient) Health() Health { return c.health.snapshot() }

// Close implements Caller.
func (c *StreamableClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Call implements Caller.
func (c *StreamableClient) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	result, err := c.call(ctx, method, params)
	c.health.record(err)
	return result, err
}

func (c *StreamableClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cl, err := c.session(ctx)
	if err != nil {
		return nil, &TransportError{Upstream: c.name, Method: method, Cause: err}
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = method
	req.Params.Arguments = params

	result, err := cl.CallTool(ctx, req)
	if err != nil {
		c.reset(cl)
		if c.timeout > 0 && ctx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Upstream: c.name, Method: method, Timeout: c.timeout}
		}
		return nil, &TransportError{Upstream: c.name, Method: method, Cause: err}
	}

	if result.IsError {
		return nil, &ToolError{Upstream: c.name, Method: method, Message: textOf(result.Content)}
	}
	return toolResultJSON(result)
}

// session returns the initialized client, creating it if needed.
func (c *StreamableClient) session(ctx context.Context) (*mcpclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	opts := []mcptransport.StreamableHTTPCOption{
		mcptransport.WithHTTPBasicClient(c.httpClient),
	}
	if c.token != "" {
		opts = append(opts, mcptransport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + c.token,
		}))
	}
	if c.timeout > 0 {
		opts = append(opts, mcptransport.WithHTTPTimeout(c.timeout))
	}

	cl, err := mcpclient.NewStreamableHttpClient(c.url, opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	if err := cl.Start(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("start client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: ClientName, Version: ClientVersion}
	initReq.Params.Capabilities = mcp.ClientCapabilities{}

	if _, err := cl.Initialize(ctx, initReq); err != nil {
		cl.Close()
		return nil, fmt.Errorf("initialize: %w", err)
	}

	c.client = cl
	return cl, nil
}

func (c *StreamableClient) reset(cl *mcpclient.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == cl {
		c.client.Close()
		c.client = nil
	}
}

// toolResultJSON converts a tool result to the JSON the forwarding routes
// relay: structured content when present, otherwise a sole text block that
// is itself JSON, otherwise the content list.
func toolResultJSON(result *mcp.CallToolResult) (json.RawMessage, error) {
	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		if err != nil {
			return nil, fmt.Errorf("encode structured content: %w", err)
		}
		return data, nil
	}

	if len(result.Content) == 1 {
		if text, ok := mcp.AsTextContent(result.Content[0]); ok {
			trimmed := strings.TrimSpace(text.Text)
			if json.Valid([]byte(trimmed)) {
				return json.RawMessage(trimmed), nil
			}
		}
	}

	data, err := json.Marshal(map[string]any{"content": result.Content})
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	return data, nil
}

func textOf(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if text, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
