package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/getmockd/imposter/pkg/logging"
)

// Route is a registered method and path.
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Router registers plugin handlers on a gin engine.
type Router struct {
	engine *gin.Engine
	log    *slog.Logger

	mu     sync.Mutex
	routes map[Route]bool
}

// NewRouter wraps engine.
func NewRouter(engine *gin.Engine, log *slog.Logger) *Router {
	return &Router{
		engine: engine,
		log:    logging.OrNop(log),
		routes: make(map[Route]bool),
	}
}

// Handle registers h for method and path. Paths use :name parameters.
// Registering the same method and path twice, or a path gin cannot
// disambiguate from an existing one, returns ErrRouteConflict.
func (r *Router) Handle(method, path string, h gin.HandlerFunc) (err error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" || !strings.HasPrefix(path, "/") || h == nil {
		return fmt.Errorf("%w: %s %s", ErrInvalidRoute, method, path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	route := Route{Method: method, Path: path}
	if r.routes[route] {
		return fmt.Errorf("%w: %s %s", ErrRouteConflict, method, path)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s %s: %v", ErrRouteConflict, method, path, rec)
		}
	}()
	r.engine.Handle(method, path, h)

	r.routes[route] = true
	r.log.Debug("route registered", "method", method, "path", path)
	return nil
}

// Routes returns the registered routes sorted by path then method.
func (r *Router) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Route, 0, len(r.routes))
	for route := range r.routes {
		out = append(out, route)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// ServeHTTP dispatches to the underlying engine.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}
