package chatapp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"

	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/telemetry/logging"
	"voygen/gateway/pkg/telemetry/metrics"
)

// unavailableBody is written when the chat backend cannot be reached.
var unavailableBody = map[string]string{
	"error":   "LibreChat service unavailable",
	"message": "Please try again later",
}

// pathRule maps a cookie Path prefix from the backend to the gateway.
type pathRule struct {
	from, to string
}

// sortPathRules orders rules longest prefix first so the most specific
// mapping wins when prefixes overlap.
func sortPathRules(m map[string]string) []pathRule {
	rules := make([]pathRule, 0, len(m))
	for from, to := range m {
		rules = append(rules, pathRule{from: from, to: to})
	}
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].from) != len(rules[j].from) {
			return len(rules[i].from) > len(rules[j].from)
		}
		return rules[i].from < rules[j].from
	})
	return rules
}

// Proxy forwards chat requests to the chat backend and rewrites the
// backend's cookies so they validate against the gateway's origin.
type Proxy struct {
	target      *url.URL
	rp          *httputil.ReverseProxy
	domain      string
	pathRewrite []pathRule
	metrics     *metrics.Collector
	logger      *slog.Logger
}

// NewProxy creates a Proxy for the backend selected by cfg.
func NewProxy(cfg config.ChatConfig, collector *metrics.Collector) (*Proxy, error) {
	target, err := url.Parse(cfg.Target())
	if err != nil {
		return nil, fmt.Errorf("invalid chat target %q: %w", cfg.Target(), err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid chat target %q: must be an absolute URL", cfg.Target())
	}

	p := &Proxy{
		target:      target,
		domain:      cfg.CookieDomain,
		pathRewrite: sortPathRules(cfg.CookiePathRewrite),
		metrics:     collector,
		logger:      slog.Default().With("component", "chatapp.proxy"),
	}

	p.rp = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
			r.Out.Host = target.Host
		},
		FlushInterval:  -1,
		ModifyResponse: p.modifyResponse,
		ErrorHandler:   p.handleError,
	}
	return p, nil
}

// Target returns the backend base URL.
func (p *Proxy) Target() *url.URL { return p.target }

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

func (p *Proxy) modifyResponse(resp *http.Response) error {
	cookies := resp.Header.Values("Set-Cookie")
	if len(cookies) == 0 {
		return nil
	}

	resp.Header.Del("Set-Cookie")
	for _, line := range cookies {
		resp.Header.Add("Set-Cookie", p.rewriteCookie(line))
	}
	return nil
}

// rewriteCookie replaces the Domain attribute and maps the Path prefix of a
// Set-Cookie line. Lines that do not parse are passed through.
func (p *Proxy) rewriteCookie(line string) string {
	c, err := http.ParseSetCookie(line)
	if err != nil {
		return line
	}

	c.Domain = p.domain
	for _, rule := range p.pathRewrite {
		if strings.HasPrefix(c.Path, rule.from) {
			c.Path = rule.to + strings.TrimPrefix(c.Path, rule.from)
			break
		}
	}

	if rewritten := c.String(); rewritten != "" {
		return rewritten
	}
	return line
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	p.metrics.RecordChatProxyError()
	logging.FromContext(r.Context()).Error("chat proxy error",
		"component", "chatapp.proxy",
		"method", r.Method,
		"path", r.URL.Path,
		"target", p.target.String(),
		"error", err,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(unavailableBody)
}
