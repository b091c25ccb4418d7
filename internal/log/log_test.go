package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentDashboard, Output: &buf})
	l.WithOwner("u1").Info("snapshot computed", FieldVersion, 3)

	out := buf.String()
	assert.Contains(t, out, "component=dashboard")
	assert.Contains(t, out, "owner_id=u1")
	assert.Contains(t, out, "version=3")
}

func TestMiddlewareAndHTTPEnd(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf})

	h := Middleware(l, func(*http.Request) string { return "req-1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HTTPEnd(r.Context(), r, http.StatusNotFound, 12, "10.0.0.1")
		OpError(r.Context(), "delete failed", errors.New("boom"), ComponentStorage, OpDelete, "u1")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/transactions?page=2", nil))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "status_code=404")
	assert.Contains(t, out, "component=storage")
	assert.Contains(t, out, "error=boom")
}

func TestFromContextFallsBack(t *testing.T) {
	l := FromContext(context.Background())
	assert.Equal(t, "unknown", l.Component())
}
