package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/rangedex/internal/transport/api"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys passes through", nil, "/indexes/people/segments", "", http.StatusOK},
		{"empty string keys pass through", []string{"", ""}, "/indexes/people/segments", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/indexes/people/segments", "", http.StatusUnauthorized},
		{"basic scheme", []string{"secret"}, "/indexes/people/segments", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"invalid token", []string{"secret"}, "/indexes/people/_rewrite", "Bearer wrong-key", http.StatusUnauthorized},
		{"prefix of valid token", []string{"secret"}, "/indexes/people/_rewrite", "Bearer sec", http.StatusUnauthorized},
		{"valid token", []string{"secret"}, "/indexes/people/_rewrite", "Bearer secret", http.StatusOK},
		{"second key", []string{"key1", "key2"}, "/indexes/people/_rewrite", "Bearer key2", http.StatusOK},
		{"health exempt", []string{"secret"}, "/health", "", http.StatusOK},
		{"metrics exempt", []string{"secret"}, "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tt.keys)(okHandler())

			req := httptest.NewRequest("GET", tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusUnauthorized {
				return
			}
			var errResp api.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != api.ErrorResponseCodeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, api.ErrorResponseCodeUnauthorized)
			}
		})
	}
}
