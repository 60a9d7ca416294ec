package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/fleet-ledger/internal/middleware"
)

var trivialHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSHandler(t *testing.T) {
	const frontend = "http://localhost:5173"

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantAllowed bool
	}{
		{name: "allowed origin", method: http.MethodGet, origin: frontend, wantAllowed: true},
		{name: "unknown origin", method: http.MethodGet, origin: "http://evil.example.com"},
		{name: "preflight for receipt upload", method: http.MethodOptions, origin: frontend, preflight: true, wantAllowed: true},
		{name: "preflight from unknown origin", method: http.MethodOptions, origin: "http://evil.example.com", preflight: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := middleware.NewCORSHandler([]string{frontend})(trivialHandler)

			req := httptest.NewRequest(tc.method, "/api/v1/payments/123/receipt", nil)
			req.Header.Set("Origin", tc.origin)
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
				// Browsers lowercase the requested header names.
				req.Header.Set("Access-Control-Request-Headers", "authorization")
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if !tc.wantAllowed {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
				return
			}
			assert.Equal(t, tc.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tc.preflight {
				assert.Less(t, rec.Code, 300)
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
			} else {
				assert.Equal(t, "Content-Disposition", rec.Header().Get("Access-Control-Expose-Headers"))
			}
		})
	}
}
