package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPrefersHTML(t *testing.T) {
	cases := []struct {
		accept string
		want   bool
	}{
		{"", true},
		{"*/*", true},
		{"text/html", true},
		{"application/json", false},
		{"text/html, application/json", true},
		{"application/json, text/html", true},
		{"application/json, text/html;q=0.9", false},
		{"text/html;q=0.5, application/json;q=0.8", false},
		{"text/*;q=0.9, application/json;q=0.2", true},
		{"image/png", false},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.accept != "" {
			req.Header.Set("Accept", tc.accept)
		}
		if got := PrefersHTML(req); got != tc.want {
			t.Fatalf("PrefersHTML(%q) = %v, want %v", tc.accept, got, tc.want)
		}
	}
}
