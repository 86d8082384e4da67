package chatapp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/telemetry/metrics"
)

func newCollector() *metrics.Collector {
	return metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "voygen"}, prometheus.NewRegistry())
}

func TestProxy_ForwardsAndRewritesCookies(t *testing.T) {
	var gotHost, gotPath, gotForwarded string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost = r.Host
		gotPath = r.URL.Path
		gotForwarded = r.Header.Get("X-Forwarded-For")
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "abc", Domain: "chat.internal", Path: "/api/auth", HttpOnly: true})
		http.SetCookie(w, &http.Cookie{Name: "token_provider", Value: "librechat", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"user":"ana"}`)
	}))
	defer backend.Close()

	p, err := NewProxy(config.ChatConfig{
		UpstreamURL:       backend.URL,
		CookiePathRewrite: map[string]string{"/api/auth": "/chat/api/auth"},
	}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "http://voygen.example/api/user", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"ana"}`, rec.Body.String())
	assert.Equal(t, p.Target().Host, gotHost)
	assert.Equal(t, "/api/user", gotPath)
	assert.NotEmpty(t, gotForwarded)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "refreshToken", cookies[0].Name)
	assert.Empty(t, cookies[0].Domain)
	assert.Equal(t, "/chat/api/auth", cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[1].Path)
}

func TestProxy_CookieDomain(t *testing.T) {
	p, err := NewProxy(config.ChatConfig{UpstreamURL: "http://chat.internal", CookieDomain: "voygen.example"}, nil)
	require.NoError(t, err)

	got := p.rewriteCookie("sid=1; Domain=chat.internal; Path=/; Secure")
	assert.Contains(t, got, "Domain=voygen.example")
	assert.Contains(t, got, "Secure")

	assert.Equal(t, "not a cookie", p.rewriteCookie("not a cookie"))
}

func TestProxy_OverlappingPathRewrites(t *testing.T) {
	p, err := NewProxy(config.ChatConfig{
		UpstreamURL: "http://chat.internal",
		CookiePathRewrite: map[string]string{
			"/":             "/chat/",
			"/api":          "/chat/api",
			"/api/auth":     "/chat/auth",
			"/api/auth/sso": "/sso",
		},
	}, nil)
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{path: "/api/auth/sso/callback", want: "/sso/callback"},
		{path: "/api/auth/refresh", want: "/chat/auth/refresh"},
		{path: "/api/convos", want: "/chat/api/convos"},
		{path: "/", want: "/chat/"},
	}

	// Repeated to cover map iteration order.
	for i := 0; i < 20; i++ {
		for _, tt := range tests {
			c, err := http.ParseSetCookie(p.rewriteCookie("sid=1; Path=" + tt.path))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Path, "path %s", tt.path)
		}
	}
}

func TestProxy_BackendUnavailable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	collector := newCollector()
	p, err := NewProxy(config.ChatConfig{UpstreamURL: url}, collector)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "LibreChat service unavailable", body["error"])
	assert.Equal(t, "Please try again later", body["message"])

	assert.Equal(t, 1.0, gathered(t, collector, "voygen_chat_proxy_errors_total"))
}

func gathered(t *testing.T, c *metrics.Collector, name string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		if m.GetCounter() != nil {
			return m.GetCounter().GetValue()
		}
		return m.GetGauge().GetValue()
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestNewProxy_LocalTarget(t *testing.T) {
	p, err := NewProxy(config.ChatConfig{Backend: config.BackendConfig{Port: 3080}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3080", p.Target().String())
}

func writeDist(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":               "<html>chat</html>",
		"assets/index-3f9a2c1b.js": "console.log(1)",
		"assets/logo.svg":          "<svg/>",
		"favicon.ico":              "ico",
		"vendor.BxY_12ab.css":      "body{}",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestStaticHandler(t *testing.T) {
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Endpoint not found"}`)
	})
	h := NewStaticHandler(writeDist(t), []string{"/api", "/oauth", "/voygen"}, fallback)

	tests := []struct {
		name       string
		method     string
		path       string
		accept     string
		wantCode   int
		wantCache  string
		wantInBody string
	}{
		{"hashed asset", "GET", "/assets/index-3f9a2c1b.js", "*/*", 200, CacheImmutable, "console.log"},
		{"hashed root asset", "GET", "/vendor.BxY_12ab.css", "*/*", 200, CacheImmutable, "body{}"},
		{"plain asset", "GET", "/favicon.ico", "*/*", 200, "", "ico"},
		{"unhashed asset in assets dir", "GET", "/assets/logo.svg", "*/*", 200, "", "<svg/>"},
		{"root", "GET", "/", "text/html", 200, CacheNoStore, "chat"},
		{"spa navigation", "GET", "/c/new", "text/html,application/xhtml+xml", 200, CacheNoStore, "chat"},
		{"api path not spa", "GET", "/api/missing", "text/html", 404, "", "Endpoint not found"},
		{"gateway route not spa", "GET", "/voygen/extract/hotels", "text/html", 404, "", "Endpoint not found"},
		{"non html accept", "GET", "/c/new", "application/json", 404, "", "Endpoint not found"},
		{"post not spa", "POST", "/c/new", "text/html", 404, "", "Endpoint not found"},
		{"traversal", "GET", "/../../etc/passwd", "*/*", 404, "", "Endpoint not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Accept", tt.accept)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCache, rec.Header().Get("Cache-Control"))
			assert.Contains(t, rec.Body.String(), tt.wantInBody)
		})
	}
}

func TestIsHashedAsset(t *testing.T) {
	tests := map[string]bool{
		"/assets/logo.svg":            false,
		"/fonts/Inter-SemiBold.woff2": false,
		"/vendor-packages.js":         false,
		"/assets/index-3f9a2c1b.js":   true,
		"/index-3f9a2c1b.js":          true,
		"/main.a1b2c3d4e5.css":        true,
		"/vendor.BxY_12ab.css":        true,
		"/favicon.ico":                false,
		"/manifest.webmanifest":       false,
		"/apple-touch-icon.png":       false,
		"/registerSW.js":              false,
	}
	for name, want := range tests {
		if got := IsHashedAsset(name); got != want {
			t.Errorf("IsHashedAsset(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestProber(t *testing.T) {
	status := http.StatusOK
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "/api/auth/logout", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer backend.Close()

	collector := newCollector()
	p := NewProber(backend.URL+"/", "/api/auth/logout", backend.Client(), collector)

	result := p.Probe(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
	assert.NoError(t, p.Check(context.Background()))

	status = http.StatusServiceUnavailable
	result = p.Probe(context.Background())
	assert.Equal(t, 0.0, gathered(t, collector, "voygen_chat_backend_up"))
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	assert.Error(t, p.Check(context.Background()))

	backend.Close()
	result = p.Probe(context.Background())
	assert.Equal(t, StatusUnreachable, result.Status)
	assert.Error(t, result.Err)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLauncher_LogsOutputAndExitCode(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	logs := captureLogs(t)

	l := NewLauncher(config.BackendConfig{
		Command: sh,
		Args:    []string{"-c", `echo "listening on $PORT as $HOST $EXTRA"; echo oops >&2; exit 3`},
		Env:     map[string]string{"EXTRA": "yes"},
		Port:    3999,
	}, nil)

	require.NoError(t, l.Run(context.Background()))

	code, exited := l.ExitCode()
	assert.True(t, exited)
	assert.Equal(t, 3, code)
	out := logs.String()
	assert.Contains(t, out, "listening on 3999 as localhost yes")
	assert.Contains(t, out, "oops")
	assert.Contains(t, out, "exit_code=3")
}

func TestLauncher_StopsOnCancel(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	captureLogs(t)

	l := NewLauncher(config.BackendConfig{Command: sh, Args: []string{"-c", "sleep 30"}, Port: 3080}, nil)
	l.stopGrace = 500 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("launcher did not stop")
	}
	_, exited := l.ExitCode()
	assert.True(t, exited)
}

func TestLauncher_Errors(t *testing.T) {
	assert.Error(t, NewLauncher(config.BackendConfig{}, nil).Run(context.Background()))
	assert.Error(t, NewLauncher(config.BackendConfig{Command: "/nonexistent/librechat-backend"}, nil).Run(context.Background()))
}

func TestLineLogger(t *testing.T) {
	logs := captureLogs(t)
	w := &lineLogger{logger: slog.Default(), level: slog.LevelInfo, stream: "stdout"}

	_, _ = w.Write([]byte("first li"))
	_, _ = w.Write([]byte("ne\r\nsecond\n\npartial"))
	w.Flush()

	out := logs.String()
	assert.Contains(t, out, `msg="first line"`)
	assert.Contains(t, out, "msg=second")
	assert.Contains(t, out, "msg=partial")
	assert.Equal(t, 3, strings.Count(out, "stream=stdout"))
}
