package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Three Days in Lisbon | Wanderlog</title>
  <meta property="og:title" content="Three Days in Lisbon">
  <meta property="og:site_name" content="Wanderlog">
  <meta name="author" content="Ana Costa">
  <meta property="article:published_time" content="2026-03-01T09:00:00Z">
  <script>var tracking = true;</script>
</head>
<body>
  <nav><a href="/">Home</a></nav>
  <article>
    <h1>Three Days in Lisbon</h1>
    <p>Day one starts in   Alfama with a tram ride.</p>
    <script>alert("x")</script>
    <p>Day two is for Belém.</p>
    <aside>Sponsored</aside>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestParse(t *testing.T) {
	a := Parse([]byte(samplePage), nil)

	if a.Title != "Three Days in Lisbon" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.SiteName != "Wanderlog" {
		t.Errorf("SiteName = %q", a.SiteName)
	}
	if a.Byline != "Ana Costa" {
		t.Errorf("Byline = %q", a.Byline)
	}

	for _, want := range []string{"Alfama with a tram ride.", "Day two is for Belém."} {
		if !strings.Contains(a.TextContent, want) {
			t.Errorf("TextContent missing %q: %q", want, a.TextContent)
		}
	}
	if a.Length != len([]rune(a.TextContent)) {
		t.Errorf("Length = %d, want rune count %d", a.Length, len([]rune(a.TextContent)))
	}
	if !strings.HasPrefix(a.Excerpt, "Day one starts in") {
		t.Errorf("Excerpt = %q", a.Excerpt)
	}

	if strings.Contains(a.Content, "<script") || strings.Contains(a.Content, "tracking") {
		t.Errorf("Content contains scripts: %s", a.Content)
	}
	if !strings.Contains(a.Content, "Day two is for Belém.") {
		t.Errorf("Content missing paragraph: %s", a.Content)
	}
	if a.RawHTML != samplePage {
		t.Error("RawHTML should be the unmodified page")
	}
}

func TestParse_Metadata(t *testing.T) {
	tests := []struct {
		name        string
		page        string
		wantTitle   string
		wantExcerpt string
	}{
		{
			name:        "title element and description",
			page:        `<html><head><title> Hotel  List </title><meta name="description" content="All hotels"></head><body><article><p>Ocean view suites with breakfast included.</p></article></body></html>`,
			wantTitle:   "Hotel List",
			wantExcerpt: "All hotels",
		},
		{
			name:        "excerpt from first paragraph",
			page:        `<html><head><title>Rooms</title></head><body><main><p>Ocean view suites.</p><p>Garden rooms.</p></main></body></html>`,
			wantTitle:   "Rooms",
			wantExcerpt: "Ocean view suites.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Parse([]byte(tt.page), nil)
			if a.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", a.Title, tt.wantTitle)
			}
			if strings.TrimSpace(a.Excerpt) != tt.wantExcerpt {
				t.Errorf("Excerpt = %q, want %q", a.Excerpt, tt.wantExcerpt)
			}
		})
	}
}

func TestParse_NoReadableContent(t *testing.T) {
	a := Parse(nil, nil)
	if a == nil {
		t.Fatal("Parse() returned nil")
	}
	if a.Title != "" || a.Content != "" || a.Length != 0 {
		t.Errorf("Article = %+v, want empty fields", a)
	}
}

func TestExtractor_Extract(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	e := NewExtractor(srv.Client(), "0.1.0")

	a, err := e.Extract(context.Background(), srv.URL+"/lisbon")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if a.Title != "Three Days in Lisbon" {
		t.Errorf("Title = %q", a.Title)
	}
	if gotUA != "voygen-api/0.1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}

	_, err = e.Extract(context.Background(), srv.URL+"/missing")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", fe.StatusCode)
	}
	if err.Error() != "Failed to extract content: HTTP 404: Not Found" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExtractor_RejectsOversizedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	e := NewExtractor(srv.Client(), "test")
	e.maxBytes = int64(len(samplePage)) - 1

	_, err := e.Extract(context.Background(), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Cause == nil {
		t.Fatalf("error = %v, want *FetchError with cause", err)
	}
	if !strings.Contains(err.Error(), "page exceeds") {
		t.Errorf("Error() = %q", err.Error())
	}

	e.maxBytes = int64(len(samplePage))
	if _, err := e.Extract(context.Background(), srv.URL); err != nil {
		t.Errorf("page of exactly the limit: error = %v", err)
	}
}

func TestExtractor_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewExtractor(nil, "test").Extract(context.Background(), url)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Cause == nil {
		t.Fatalf("error = %v, want *FetchError with cause", err)
	}
}
