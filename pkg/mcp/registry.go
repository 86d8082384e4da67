package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/journal"
	"voygen/gateway/pkg/telemetry/logging"
	"voygen/gateway/pkg/telemetry/metrics"
)

// ErrUnknownUpstream is returned when a call names an upstream that is not
// registered.
var ErrUnknownUpstream = errors.New("unknown upstream")

// Options configures a Registry.
type Options struct {
	// HTTPClient is shared by all callers. NewHTTPClient is used when nil.
	HTTPClient *http.Client

	// Metrics receives per-call observations. May be nil.
	Metrics *metrics.Collector

	// Journal receives one entry per call. May be nil.
	Journal *journal.Recorder

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Registry holds the callers of all configured upstreams and instruments
// every call made through it.
type Registry struct {
	mu      sync.RWMutex
	callers map[string]Caller

	httpClient *http.Client
	metrics    *metrics.Collector
	journal    *journal.Recorder
	logger     *slog.Logger
}

// NewRegistry builds callers for the data and publish upstreams of cfg.
func NewRegistry(cfg config.UpstreamsConfig, opts Options) (*Registry, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Registry{
		httpClient: opts.HTTPClient,
		metrics:    opts.Metrics,
		journal:    opts.Journal,
		logger:     opts.Logger.With("component", "mcp.registry"),
	}

	callers, err := r.build(cfg)
	if err != nil {
		return nil, err
	}
	r.callers = callers
	return r, nil
}

func (r *Registry) build(cfg config.UpstreamsConfig) (map[string]Caller, error) {
	callers := make(map[string]Caller, 2)
	for name, ucfg := range map[string]config.UpstreamConfig{
		UpstreamData:    cfg.Data,
		UpstreamPublish: cfg.Publish,
	} {
		c, err := New(name, ucfg, r.httpClient)
		if err != nil {
			for _, built := range callers {
				built.Close()
			}
			return nil, err
		}
		callers[name] = c
	}
	return callers, nil
}

// Swap replaces all callers with ones built from cfg and closes the old
// ones. Calls in flight on the old callers complete normally.
func (r *Registry) Swap(cfg config.UpstreamsConfig) error {
	callers, err := r.build(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	old := r.callers
	r.callers = callers
	r.mu.Unlock()

	for _, c := range old {
		if err := c.Close(); err != nil {
			r.logger.Warn("failed to close upstream caller", "upstream", c.Name(), "error", err)
		}
	}
	r.logger.Info("upstream callers reloaded",
		"data_configured", cfg.Data.URL != "",
		"publish_configured", cfg.Publish.URL != "",
	)
	return nil
}

// Caller returns the caller registered under name.
func (r *Registry) Caller(name string) (Caller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.callers[name]
	return c, ok
}

// Names returns the registered upstream names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.callers))
	for name := range r.callers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes method on the named upstream. The outcome is counted in
// metrics and written to the journal, tagged with the request ID and route
// carried by ctx.
func (r *Registry) Call(ctx context.Context, upstream, method string, params any) (json.RawMessage, error) {
	c, ok := r.Caller(upstream)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUpstream, upstream)
	}

	start := time.Now()
	result, err := c.Call(ctx, method, params)
	duration := time.Since(start)

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	r.metrics.RecordForwardCall(upstream, method, status, duration)

	entry := &journal.Entry{
		RequestID: logging.RequestID(ctx),
		Route:     logging.Route(ctx),
		Upstream:  upstream,
		Method:    method,
		Status:    journal.StatusSuccess,
		Duration:  duration,
	}
	if err != nil {
		entry.Status = journal.StatusError
		entry.StatusCode = StatusCode(err)
		entry.Error = err.Error()
	}
	r.journal.Record(entry)

	logger := logging.FromContext(ctx)
	if err != nil {
		level := slog.LevelError
		if IsNotConfigured(err) {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "upstream call failed",
			"upstream", upstream,
			"method", method,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	logger.Debug("upstream call completed",
		"upstream", upstream,
		"method", method,
		"duration_ms", duration.Milliseconds(),
		"bytes", len(result),
	)
	return result, nil
}

// Health returns the health of the named upstream.
func (r *Registry) Health(name string) (Health, bool) {
	c, ok := r.Caller(name)
	if !ok {
		return Health{}, false
	}
	return c.Health(), true
}

// CheckUpstream returns a readiness check for the named upstream. It fails
// when the upstream is not configured or has failed UnhealthyThreshold
// calls in a row. It does not call the upstream.
func (r *Registry) CheckUpstream(name string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		h, ok := r.Health(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownUpstream, name)
		}
		if !h.Configured {
			return errors.New(NotConfiguredMessage(name))
		}
		if !h.Healthy() {
			return fmt.Errorf("%d consecutive failures, last: %s", h.ConsecutiveFailures, h.LastError)
		}
		return nil
	}
}

// Close closes all callers.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, c := range r.callers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
