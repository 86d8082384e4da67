package types

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK          bool              `json:"ok"`
	Service     string            `json:"service"`
	Version     string            `json:"version"`
	Timestamp   string            `json:"timestamp"`
	Environment string            `json:"environment"`
	Components  map[string]string `json:"components,omitempty"`
}

// ServiceStatus is the body of the per-service status routes.
type ServiceStatus struct {
	OK        bool     `json:"ok"`
	Service   string   `json:"service"`
	Endpoints []string `json:"endpoints"`
}

// RootInfo is the body of GET / when no chat client is mounted.
type RootInfo struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

// ChatHealthResponse is the body of GET /health/chat.
type ChatHealthResponse struct {
	OK              bool   `json:"ok"`
	Service         string `json:"service"`
	LibreChatStatus string `json:"librechat_status"`
	LibreChatURL    string `json:"librechat_url,omitempty"`
	Error           string `json:"error,omitempty"`
}
