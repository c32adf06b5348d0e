package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name        string
		origins     []string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed string
	}{
		{"allowed origin", []string{"http://app.local/"}, http.MethodGet, "http://app.local", false, http.StatusTeapot, "http://app.local"},
		{"unknown origin", []string{"http://app.local"}, http.MethodGet, "http://evil.local", false, http.StatusTeapot, ""},
		{"wildcard", []string{"*"}, http.MethodGet, "http://any.local", false, http.StatusTeapot, "http://any.local"},
		{"preflight allowed", []string{"http://app.local"}, http.MethodOptions, "http://app.local", true, http.StatusNoContent, "http://app.local"},
		{"preflight unknown", []string{"http://app.local"}, http.MethodOptions, "http://evil.local", true, http.StatusNoContent, ""},
		{"plain options reaches handler", []string{"http://app.local"}, http.MethodOptions, "http://app.local", false, http.StatusTeapot, "http://app.local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/events", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()

			CORS(tt.origins, next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllowed, rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.preflight && tt.wantAllowed != "" {
				assert.Equal(t, corsAllowMethods, rr.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}
