package proxy

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voygen/gateway/pkg/proxy/types"
)

func TestParseJSONBody_Form(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{
			name: "flat fields",
			body: "trip_id=t1&site=booking&empty=",
			want: map[string]string{"trip_id": `"t1"`, "site": `"booking"`, "empty": `""`},
		},
		{
			name: "repeated field",
			body: "tag=a&tag=b",
			want: map[string]string{"tag": `["a","b"]`},
		},
		{
			name: "bracket array",
			body: "tags%5B%5D=beach&tags%5B%5D=city",
			want: map[string]string{"tags": `["beach","city"]`},
		},
		{
			name: "nested object",
			body: "trip[name]=Lisbon&trip[dates][start]=2026-05-01",
			want: map[string]string{"trip": `{"dates":{"start":"2026-05-01"},"name":"Lisbon"}`},
		},
		{
			name: "indexed objects become an array",
			body: "hotels[1][name]=B&hotels[0][name]=A&hotels[10][name]=K",
			want: map[string]string{"hotels": `[{"name":"A"},{"name":"B"},{"name":"K"}]`},
		},
		{
			name: "html is not escaped",
			body: "html_content=%3Cp%3Ehi%3C%2Fp%3E",
			want: map[string]string{"html_content": `"<p>hi</p>"`},
		},
		{
			name: "malformed brackets kept whole",
			body: "a[b=1",
			want: map[string]string{"a[b": `"1"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

			body, err := ParseJSONBody(req)
			if err != nil {
				t.Fatalf("ParseJSONBody() error = %v", err)
			}
			if len(body) != len(tt.want) {
				t.Errorf("keys = %v, want %d", body, len(tt.want))
			}
			for key, want := range tt.want {
				if got := string(body[key]); got != want {
					t.Errorf("body[%s] = %s, want %s", key, got, want)
				}
			}
		})
	}
}

func TestParseJSONBody_FormTruthiness(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("trip_id=t1&site=&hotels[0][name]=A"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := ParseJSONBody(req)
	if err != nil {
		t.Fatal(err)
	}
	if !body.Has("trip_id") || body.Has("site") {
		t.Error("Has() mismatch for form fields")
	}
	if !body.IsArray("hotels") || body.Len("hotels") != 1 {
		t.Errorf("hotels = %s, want a one element array", body["hotels"])
	}
}

func TestParseJSONBody_InvalidForm(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("trip_id=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := ParseJSONBody(req)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if reqErr.Message != types.ErrorInvalidForm || reqErr.StatusCode() != http.StatusBadRequest {
		t.Errorf("error = %q (%d)", reqErr.Message, reqErr.StatusCode())
	}
}

func TestParseJSONBody_JSONIgnoresFormParsing(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("trip_id=t1"))
	req.Header.Set("Content-Type", "application/json")

	_, err := ParseJSONBody(req)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Code != types.CodeInvalidJSON {
		t.Errorf("error = %v, want invalid JSON", err)
	}
}
