package chatapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"voygen/gateway/pkg/telemetry/metrics"
)

// Backend states reported by the prober.
const (
	StatusHealthy     = "healthy"
	StatusUnhealthy   = "unhealthy"
	StatusUnreachable = "unreachable"
)

// ProbeResult is the outcome of one health probe.
type ProbeResult struct {
	Status     string
	StatusCode int
	Err        error
}

// Prober checks chat backend health with a HEAD request.
type Prober struct {
	target  string
	path    string
	client  *http.Client
	metrics *metrics.Collector
}

// NewProber probes target+healthPath.
func NewProber(target, healthPath string, client *http.Client, collector *metrics.Collector) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Prober{
		target:  strings.TrimRight(target, "/"),
		path:    healthPath,
		client:  client,
		metrics: collector,
	}
}

// Target returns the backend base URL.
func (p *Prober) Target() string { return p.target }

// Probe sends one HEAD request and updates the backend-up gauge.
func (p *Prober) Probe(ctx context.Context) ProbeResult {
	result := p.probe(ctx)
	p.metrics.SetChatBackendUp(result.Status == StatusHealthy)
	return result
}

func (p *Prober) probe(ctx context.Context) ProbeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.target+p.path, nil)
	if err != nil {
		return ProbeResult{Status: StatusUnreachable, Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return ProbeResult{Status: StatusUnreachable, Err: err}
	}
	resp.Body.Close()

	status := StatusUnhealthy
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		status = StatusHealthy
	}
	return ProbeResult{Status: status, StatusCode: resp.StatusCode}
}

// Check is a readiness check that fails unless the backend is healthy.
func (p *Prober) Check(ctx context.Context) error {
	result := p.Probe(ctx)
	switch result.Status {
	case StatusHealthy:
		return nil
	case StatusUnreachable:
		return fmt.Errorf("chat backend unreachable: %w", result.Err)
	default:
		return fmt.Errorf("chat backend unhealthy: HTTP %d", result.StatusCode)
	}
}
