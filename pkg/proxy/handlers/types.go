package handlers

import (
	"context"
	"encoding/json"

	"voygen/gateway/pkg/chatapp"
	"voygen/gateway/pkg/content"
)

// Forwarder calls a method on a named upstream MCP service and returns its
// JSON result unchanged. *mcp.Registry implements it.
type Forwarder interface {
	Call(ctx context.Context, upstream, method string, params any) (json.RawMessage, error)
}

// ContentExtractor fetches a page and extracts its main article.
// *content.Extractor implements it.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (*content.Article, error)
}

// ChatProber reports the health of the chat backend. *chatapp.Prober
// implements it.
type ChatProber interface {
	Probe(ctx context.Context) chatapp.ProbeResult
	Target() string
}
