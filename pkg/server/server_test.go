package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/logging"
	"github.com/getmockd/imposter/pkg/plugin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routablePlugin struct {
	id     string
	routes func(r plugin.Router) error
}

func (p *routablePlugin) ID() string { return p.id }

func (p *routablePlugin) ConfigureRoutes(r plugin.Router) error { return p.routes(r) }

type plainPlugin struct{}

func (plainPlugin) ID() string { return "plain" }

func newTestServer(t *testing.T, plugins ...plugin.Plugin) *Server {
	t.Helper()
	s := New(config.DefaultServerConfig(), Options{Version: "test"})

	reg := plugin.NewRegistry()
	for _, p := range plugins {
		reg.RegisterInstance(p.ID(), p)
	}
	require.NoError(t, s.ConfigureRoutes(reg))
	return s
}

func do(s *Server, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRouter_Handle(t *testing.T) {
	r := NewRouter(gin.New(), nil)
	h := func(c *gin.Context) { c.Status(http.StatusOK) }

	require.NoError(t, r.Handle("get", "/pets/:id", h))
	require.NoError(t, r.Handle(http.MethodPost, "/pets/:id", h))
	require.NoError(t, r.Handle(http.MethodGet, "/pets", h))

	err := r.Handle(http.MethodGet, "/pets/:id", h)
	assert.ErrorIs(t, err, ErrRouteConflict)

	err = r.Handle(http.MethodGet, "/pets/:petId", h)
	assert.ErrorIs(t, err, ErrRouteConflict)

	assert.ErrorIs(t, r.Handle("", "/x", h), ErrInvalidRoute)
	assert.ErrorIs(t, r.Handle(http.MethodGet, "x", h), ErrInvalidRoute)
	assert.ErrorIs(t, r.Handle(http.MethodGet, "/x", nil), ErrInvalidRoute)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, Route{Method: "GET", Path: "/pets"}, routes[0])
	assert.Equal(t, Route{Method: "GET", Path: "/pets/:id"}, routes[1])
	assert.Equal(t, Route{Method: "POST", Path: "/pets/:id"}, routes[2])
}

func TestServer_ConfigureRoutes(t *testing.T) {
	p := &routablePlugin{id: "test", routes: func(r plugin.Router) error {
		return r.Handle(http.MethodGet, "/hello/:name", func(c *gin.Context) {
			c.String(http.StatusOK, "hello "+c.Param("name"))
		})
	}}
	s := newTestServer(t, p, plainPlugin{})

	rec := do(s, http.MethodGet, "/hello/world", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestServer_ConfigureRoutesError(t *testing.T) {
	boom := errors.New("boom")
	p := &routablePlugin{id: "bad", routes: func(plugin.Router) error { return boom }}

	s := New(nil, Options{})
	reg := plugin.NewRegistry()
	reg.RegisterInstance("bad", p)

	err := s.ConfigureRoutes(reg)
	assert.ErrorIs(t, err, boom)
}

func TestServer_SystemRouteConflict(t *testing.T) {
	p := &routablePlugin{id: "clash", routes: func(r plugin.Router) error {
		return r.Handle(http.MethodGet, "/system/status", func(*gin.Context) {})
	}}

	s := New(nil, Options{})
	reg := plugin.NewRegistry()
	reg.RegisterInstance("clash", p)

	assert.ErrorIs(t, s.ConfigureRoutes(reg), ErrRouteConflict)
}

func TestServer_Status(t *testing.T) {
	s := newTestServer(t, plainPlugin{})

	rec := do(s, http.MethodGet, "/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.EqualValues(t, 1, body["plugins"])
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, plainPlugin{})
	do(s, http.MethodGet, "/system/status", nil)
	do(s, http.MethodGet, "/missing", nil)

	rec := do(s, http.MethodGet, "/system/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `imposter_requests_total{method="GET",status="200"} 1`)
	assert.Contains(t, body, `imposter_requests_total{method="GET",status="404"} 1`)
	assert.Contains(t, body, "imposter_request_duration_seconds_bucket")
	assert.Contains(t, body, "imposter_plugins_loaded 1")
}

func TestServer_NoRoute(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/nothing/here", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["error"])
}

func TestFail_IncludesRequestID(t *testing.T) {
	p := &routablePlugin{id: "failing", routes: func(r plugin.Router) error {
		return r.Handle(http.MethodGet, "/fail", func(c *gin.Context) {
			Fail(c, http.StatusInternalServerError, errors.New("dataset unreadable"))
		})
	}}
	s := newTestServer(t, p)

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(RequestIDHeader, "rid-456")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal_server_error", body["error"])
	assert.Equal(t, "dataset unreadable", body["message"])
	assert.Equal(t, "rid-456", body["requestId"])
}

func TestServer_RecoversPanics(t *testing.T) {
	p := &routablePlugin{id: "panicky", routes: func(r plugin.Router) error {
		return r.Handle(http.MethodGet, "/panic", func(*gin.Context) { panic("kaboom") })
	}}
	s := newTestServer(t, p)

	rec := do(s, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "kaboom")
}

func TestServer_RequestIDPropagation(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Format: logging.FormatJSON, Output: &buf})

	s := New(nil, Options{Logger: log})
	require.NoError(t, s.Router().Handle(http.MethodGet, "/id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	}))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "rid-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "rid-123", rec.Body.String())
	assert.Equal(t, "rid-123", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"rid-123"`)
	assert.Contains(t, buf.String(), `"path":"/id"`)
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Fail(c, http.StatusMethodNotAllowed, errors.New("update requires PATCH"))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.True(t, c.IsAborted())
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "method_not_allowed", body["error"])
	assert.Equal(t, "update requires PATCH", body["message"])
}

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := config.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0

	s := New(cfg, Options{Version: "test"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.ErrorIs(t, s.Start(ctx), ErrAlreadyStarted)

	addr := s.Addr()
	require.NotNil(t, addr)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr.String() + "/system/status")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	require.NoError(t, s.Shutdown(shutdownCtx))
	require.NoError(t, s.Shutdown(shutdownCtx))

	_, err = client.Get("http://" + addr.String() + "/system/status")
	assert.Error(t, err)
}
