package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voygen/gateway/pkg/proxy/types"
)

func TestParseJSONBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKeys int
		wantCode string
	}{
		{name: "object", body: `{"trip_id":"t1","hotels":[{"name":"A"}]}`, wantKeys: 2},
		{name: "empty body", body: ``, wantKeys: 0},
		{name: "whitespace", body: "  \n", wantKeys: 0},
		{name: "array", body: `[1,2]`, wantKeys: 0},
		{name: "scalar", body: `"hello"`, wantKeys: 0},
		{name: "malformed", body: `{"trip_id":`, wantCode: types.CodeInvalidJSON},
		{name: "trailing garbage", body: `{"a":1} x`, wantCode: types.CodeInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/voygen/extract/hotels", strings.NewReader(tt.body))
			body, err := ParseJSONBody(req)

			if tt.wantCode != "" {
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("error = %v, want *RequestError", err)
				}
				if reqErr.Code != tt.wantCode {
					t.Errorf("Code = %q, want %q", reqErr.Code, tt.wantCode)
				}
				if reqErr.StatusCode() != http.StatusBadRequest {
					t.Errorf("StatusCode() = %d", reqErr.StatusCode())
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJSONBody() error = %v", err)
			}
			if len(body) != tt.wantKeys {
				t.Errorf("len(body) = %d, want %d", len(body), tt.wantKeys)
			}
		})
	}
}

func TestParseJSONBody_TooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"data":"`+strings.Repeat("x", 100)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	_, err := ParseJSONBody(req)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if reqErr.StatusCode() != http.StatusRequestEntityTooLarge {
		t.Errorf("StatusCode() = %d, want 413", reqErr.StatusCode())
	}
}

func TestTruthy(t *testing.T) {
	tests := map[string]bool{
		``:          false,
		`null`:      false,
		`false`:     false,
		`""`:        false,
		`0`:         false,
		`0.0`:       false,
		`-0`:        false,
		`true`:      true,
		`"x"`:       true,
		`1`:         true,
		`-2.5`:      true,
		`[]`:        true,
		`{}`:        true,
		`"0"`:       true,
		` "spaced"`: true,
	}
	for raw, want := range tests {
		if got := Truthy(json.RawMessage(raw)); got != want {
			t.Errorf("Truthy(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestBody_Accessors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"trip_id":"t1","count":3,"hotels":[{"id":12345678901234567890},{}],"site":"","opts":{"a":1},"none":null}`))
	body, err := ParseJSONBody(req)
	if err != nil {
		t.Fatal(err)
	}

	if !body.Has("trip_id") || body.Has("site") || body.Has("none") || body.Has("missing") {
		t.Error("Has() mismatch")
	}
	if !body.IsArray("hotels") || body.IsArray("opts") || body.IsArray("missing") {
		t.Error("IsArray() mismatch")
	}
	if n := body.Len("hotels"); n != 2 {
		t.Errorf("Len(hotels) = %d", n)
	}
	if s := body.String("trip_id"); s != "t1" {
		t.Errorf("String(trip_id) = %q", s)
	}
	if s := body.String("count"); s != "3" {
		t.Errorf("String(count) = %q", s)
	}
	if s := body.String("none"); s != "" {
		t.Errorf("String(none) = %q", s)
	}
	if s := body.StringOr("site", "voygen-api"); s != "voygen-api" {
		t.Errorf("StringOr(site) = %q", s)
	}
	if v := string(body.Value("hotels")); v != `[{"id":12345678901234567890},{}]` {
		t.Errorf("Value(hotels) = %s", v)
	}
	if v := string(body.ValueOr("template", "standard")); v != `"standard"` {
		t.Errorf("ValueOr(template) = %s", v)
	}
	if body.Value("missing") != nil {
		t.Error("Value(missing) should be nil")
	}
}

func TestMissingFields(t *testing.T) {
	if got := MissingFields("url", false).Error(); got != "Missing required field: url" {
		t.Errorf("got %q", got)
	}
	if got := MissingFields("url, trip_id", true).Error(); got != "Missing required fields: url, trip_id" {
		t.Errorf("got %q", got)
	}
}
