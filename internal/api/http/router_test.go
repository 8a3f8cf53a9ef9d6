package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/service"
	"ozzus/logroute/internal/sink"
)

type captureSink struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (s *captureSink) Write(_ context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, rec.String())
	return nil
}

func newTestRouter(t *testing.T, routes map[domain.LogTarget]sink.Sink, minLevel domain.LogLevel) (*gin.Engine, *service.LogService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewLogService(routes, service.Config{Name: "test", MinLevel: minLevel}, log)
	svc.SetRunning(true)

	return NewRouter(NewHealthController(svc), NewLogController(svc, log), log), svc
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var payload map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), w.Body.String())
	}
	return w, payload
}

func TestWrite_Accepted(t *testing.T) {
	file := &captureSink{}
	r, _ := newTestRouter(t, map[domain.LogTarget]sink.Sink{domain.LogTargetFileSystem: file}, domain.LogLevelDebug)

	w, body := do(t, r, http.MethodPost, "/api/logs", `{"target":"file","level":"info","message":"Test log message"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "[INFO] Test log message", body["record"])
	assert.Equal(t, []string{"[INFO] Test log message"}, file.lines)
}

func TestWrite_Filtered(t *testing.T) {
	console := &captureSink{}
	r, _ := newTestRouter(t, map[domain.LogTarget]sink.Sink{domain.LogTargetConsole: console}, domain.LogLevelWarn)

	w, body := do(t, r, http.MethodPost, "/api/logs", `{"target":"console","level":"debug","message":"x"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["filtered"])
	assert.Empty(t, console.lines)
}

func TestWrite_Errors(t *testing.T) {
	failing := &captureSink{err: errors.New("broker down")}
	r, _ := newTestRouter(t, map[domain.LogTarget]sink.Sink{domain.LogTargetNetwork: failing}, domain.LogLevelDebug)

	cases := []struct {
		body string
		code int
	}{
		{`{"target":"pager","level":"info","message":"x"}`, http.StatusBadRequest},
		{`{"target":"console","level":"loud","message":"x"}`, http.StatusBadRequest},
		{`{"level":"info"}`, http.StatusBadRequest},
		{`{"target":"console","level":"info","message":"x"}`, http.StatusNotFound},
		{`{"target":"network","level":"info","message":"x"}`, http.StatusBadGateway},
	}
	for _, tc := range cases {
		w, _ := do(t, r, http.MethodPost, "/api/logs", tc.body)
		assert.Equal(t, tc.code, w.Code, tc.body)
	}
}

func TestWrite_PanickingSinkIsRecovered(t *testing.T) {
	r, _ := newTestRouter(t, map[domain.LogTarget]sink.Sink{domain.LogTargetNetwork: sink.Unimplemented{}}, domain.LogLevelDebug)

	w, body := do(t, r, http.MethodPost, "/api/logs", `{"target":"network","level":"info","message":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", body["error"])
}

func TestWriteBatch_SkipsBlankAndNumbers(t *testing.T) {
	file := &captureSink{}
	r, _ := newTestRouter(t, map[domain.LogTarget]sink.Sink{domain.LogTargetFileSystem: file}, domain.LogLevelDebug)

	w, body := do(t, r, http.MethodPost, "/api/logs/batch",
		`{"target":"filesystem","level":"error","messages":["a","","  ","b"]}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.EqualValues(t, 2, body["skipped"])

	items := body["items"].([]any)
	require.Len(t, items, 2)
	second := items[1].(map[string]any)
	assert.EqualValues(t, 1, second["index"])
	assert.Equal(t, "b", second["message"])
	assert.Equal(t, "written", second["status"])

	assert.Equal(t, []string{"[ERROR] a", "[ERROR] b"}, file.lines)
}

func TestWriteBatch_AllFailed(t *testing.T) {
	r, _ := newTestRouter(t, nil, domain.LogLevelDebug)

	w, _ := do(t, r, http.MethodPost, "/api/logs/batch", `{"target":"console","level":"info","messages":["a"]}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestEnumerate(t *testing.T) {
	r, _ := newTestRouter(t, nil, domain.LogLevelDebug)

	w, body := do(t, r, http.MethodPost, "/api/enumerate", `{"values":["string_0","","string_2"],"version":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["items"], 3)

	w, body = do(t, r, http.MethodPost, "/api/enumerate", `{"values":["string_0","","string_2"],"filter":"nonblank"}`)
	require.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, map[string]any{"index": float64(1), "value": "string_2"}, items[1])

	w, _ = do(t, r, http.MethodPost, "/api/enumerate", `{"values":[],"version":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndInfo(t *testing.T) {
	r, svc := newTestRouter(t, map[domain.LogTarget]sink.Sink{domain.LogTargetConsole: &captureSink{}}, domain.LogLevelInfo)

	w, body := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])

	w, body = do(t, r, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INFO", body["min_level"])
	assert.Equal(t, []any{"console"}, body["routes"])

	w, body = do(t, r, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["targets"], "network")

	svc.SetRunning(false)
	w, body = do(t, r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", body["status"])
}

type failingCheck struct{}

func (failingCheck) Name() string { return "collector" }

func (failingCheck) Check(context.Context) error { return errors.New("connection refused") }

func TestReady_RunsSinkChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewLogService(map[domain.LogTarget]sink.Sink{
		domain.LogTargetConsole: &captureSink{},
	}, service.Config{Name: "test"}, log)
	svc.SetRunning(true)

	r := NewRouter(NewHealthController(svc, failingCheck{}), NewLogController(svc, log), log)

	w, body := do(t, r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	results := body["checks"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "collector", first["name"])
	assert.Equal(t, false, first["ok"])
	assert.Equal(t, "connection refused", first["error"])
}
