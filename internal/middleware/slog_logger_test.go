package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleet-ledger/internal/middleware"
)

// logLine routes one request through RequestID, the logger and a chi route
// answering status, and returns the decoded log entry.
func logLine(t *testing.T, status int) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, middleware.NewSlogLogger(logger))
	r.Get("/api/v1/boat/{boatId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("{}"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/boat/42", nil))
	require.Equal(t, status, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSlogLogger_RequestFields(t *testing.T) {
	entry := logLine(t, http.StatusOK)

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, http.MethodGet, entry["method"])
	assert.Equal(t, "/api/v1/boat/42", entry["path"])
	assert.Equal(t, "/api/v1/boat/{boatId}", entry["route"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.EqualValues(t, 2, entry["bytes"])
	assert.NotEmpty(t, entry["request_id"])
	assert.Contains(t, entry, "duration_ms")
}

func TestSlogLogger_ServerErrorsLogAtErrorLevel(t *testing.T) {
	assert.Equal(t, "ERROR", logLine(t, http.StatusInternalServerError)["level"])
	assert.Equal(t, "INFO", logLine(t, http.StatusNotFound)["level"])
}
