package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/httputil"
	"github.com/getmockd/imposter/pkg/logging"
	"github.com/getmockd/imposter/pkg/plugin"
)

// Server timeouts.
const (
	ReadTimeout     = 30 * time.Second
	WriteTimeout    = 30 * time.Second
	ShutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Version is reported by /system/status.
	Version string

	// Logger receives access logs and errors. Nil discards output.
	Logger *slog.Logger
}

// Server serves the routes registered by plugins.
type Server struct {
	cfg     *config.ServerConfig
	version string
	log     *slog.Logger

	engine  *gin.Engine
	router  *Router
	metrics *Metrics

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	plugins    int
}

// New creates a server with the middleware chain and system endpoints in
// place. No listener is opened until Start.
func New(cfg *config.ServerConfig, opts Options) *Server {
	if cfg == nil {
		cfg = config.DefaultServerConfig()
	}
	log := logging.OrNop(opts.Logger)

	engine := gin.New()
	metrics := NewMetrics()

	s := &Server{
		cfg:     cfg,
		version: opts.Version,
		log:     log,
		engine:  engine,
		router:  NewRouter(engine, log),
		metrics: metrics,
	}

	engine.Use(requestIDMiddleware(log))
	engine.Use(accessLogMiddleware())
	engine.Use(metricsMiddleware(metrics))
	engine.Use(recoveryMiddleware())

	engine.NoRoute(func(c *gin.Context) {
		Fail(c, http.StatusNotFound, fmt.Errorf("no resource matches %s %s", c.Request.Method, c.Request.URL.Path))
	})

	engine.GET("/system/status", s.handleStatus)
	engine.GET("/system/metrics", gin.WrapH(metrics.Handler()))

	return s
}

// Router returns the router plugins register handlers on.
func (s *Server) Router() *Router {
	return s.router
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ConfigureRoutes asks every routable plugin in reg to register its handlers.
func (s *Server) ConfigureRoutes(reg *plugin.Registry) error {
	instances := reg.Instances()
	for _, p := range instances {
		r, ok := p.(plugin.Routable)
		if !ok {
			continue
		}
		if err := r.ConfigureRoutes(s.router); err != nil {
			return fmt.Errorf("plugin %s: failed to configure routes: %w", p.ID(), err)
		}
	}

	s.mu.Lock()
	s.plugins = len(instances)
	s.mu.Unlock()
	s.metrics.SetPluginsLoaded(len(instances))

	s.log.Info("routes configured", "routes", len(s.router.Routes()), "plugins", len(instances))
	return nil
}

// Start opens the listener and serves in the background. The server shuts
// down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr(), err)
	}

	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}
	s.httpServer = srv
	s.listener = ln

	s.log.Info("mock server started", "addr", ln.Addr().String(), "url", s.cfg.ResolveServerURL())

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	return nil
}

// Addr returns the listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully stops the server. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.log.Info("mock server stopped")
	return nil
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.Lock()
	plugins := s.plugins
	s.mu.Unlock()

	httputil.WriteOK(c.Writer, gin.H{
		"status":  "ok",
		"version": s.version,
		"plugins": plugins,
		"routes":  len(s.router.Routes()),
	})
}
