package handlers

import (
	"net/http"
	"time"

	"voygen/gateway/pkg/chatapp"
	"voygen/gateway/pkg/proxy"
	"voygen/gateway/pkg/proxy/types"
)

// Service identity reported by the informational endpoints.
const (
	ServiceName     = "voygen-api"
	ChatServiceName = "librechat-proxy"
	RootMessage     = "Voygen API Server"
)

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// HealthHandler answers GET /health. It never consults upstreams: the
// gateway is alive whenever it can answer.
type HealthHandler struct {
	Version     string
	Environment string

	// Components describes how the chat layer is served, e.g.
	// {"api": "healthy", "librechat": "proxied"}. Omitted when empty.
	Components map[string]string

	now func() time.Time
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(version, environment string, components map[string]string) *HealthHandler {
	return &HealthHandler{
		Version:     version,
		Environment: environment,
		Components:  components,
		now:         time.Now,
	}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.now != nil {
		now = h.now
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &types.HealthResponse{
		OK:          true,
		Service:     ServiceName,
		Version:     h.Version,
		Timestamp:   now().UTC().Format(timestampLayout),
		Environment: h.Environment,
		Components:  h.Components,
	})
}

// RootHandler answers GET / when no chat client is served from the root.
type RootHandler struct {
	Version   string
	Endpoints []string
}

// DefaultRootEndpoints are the entry points advertised by RootHandler.
var DefaultRootEndpoints = []string{
	"/health",
	"/voygen/extract",
	"/voygen/import-from-url",
	"/voygen/publish",
}

// NewRootHandler creates the root info handler.
func NewRootHandler(version string) *RootHandler {
	return &RootHandler{Version: version, Endpoints: DefaultRootEndpoints}
}

// ServeHTTP implements http.Handler.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = proxy.WriteJSONResponse(w, http.StatusOK, &types.RootInfo{
		Message:   RootMessage,
		Version:   h.Version,
		Status:    "running",
		Endpoints: h.Endpoints,
	})
}

// ChatHealthHandler answers GET /health/chat by probing the chat backend.
type ChatHealthHandler struct {
	Prober ChatProber
}

// NewChatHealthHandler creates the chat health handler.
func NewChatHealthHandler(prober ChatProber) *ChatHealthHandler {
	return &ChatHealthHandler{Prober: prober}
}

// ServeHTTP implements http.Handler. An unreachable backend yields 500;
// a reachable one yields 200 with ok reflecting its answer.
func (h *ChatHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result := h.Prober.Probe(r.Context())

	if result.Status == chatapp.StatusUnreachable {
		msg := "unknown error"
		if result.Err != nil {
			msg = result.Err.Error()
		}
		_ = proxy.WriteJSONResponse(w, http.StatusInternalServerError, &types.ChatHealthResponse{
			OK:              false,
			Service:         ChatServiceName,
			LibreChatStatus: result.Status,
			Error:           msg,
		})
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &types.ChatHealthResponse{
		OK:              result.Status == chatapp.StatusHealthy,
		Service:         ChatServiceName,
		LibreChatStatus: result.Status,
		LibreChatURL:    h.Prober.Target(),
	})
}

// StatusHandler answers the per-service status routes.
type StatusHandler struct {
	Service   string
	Endpoints []string
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = proxy.WriteJSONResponse(w, http.StatusOK, &types.ServiceStatus{
		OK:        true,
		Service:   h.Service,
		Endpoints: h.Endpoints,
	})
}
