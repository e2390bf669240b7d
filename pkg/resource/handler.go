package resource

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/getmockd/imposter/pkg/behaviour"
	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/httputil"
	"github.com/getmockd/imposter/pkg/script"
	"github.com/getmockd/imposter/pkg/server"
)

// DefaultFunc is a plugin's built-in resolution, invoked when the behaviour
// is still DEFAULT after scripting.
type DefaultFunc func(c *gin.Context, b *behaviour.Behaviour)

// Handler runs the per-request behaviour contract.
type Handler struct {
	scripts *script.Runner
}

// NewHandler returns a Handler. A nil runner disables scripting.
func NewHandler(scripts *script.Runner) *Handler {
	return &Handler{scripts: scripts}
}

// Defaults layers the resource's configured response onto b.
func Defaults(b *behaviour.Behaviour, rc *config.ResourceConfig) *behaviour.Behaviour {
	if rc == nil {
		return b
	}
	if rc.Response.StatusCode != 0 {
		b.WithStatusCode(rc.Response.StatusCode)
	}
	if rc.Response.File != "" {
		b.WithFile(rc.Response.File)
	}
	for name, value := range rc.Response.Headers {
		b.WithHeader(name, value)
	}
	return b
}

// Handle builds the behaviour for the request, runs the resource's script
// and dispatches to Emit or fallback.
func (h *Handler) Handle(c *gin.Context, rc *config.ResourceConfig, fallback DefaultFunc) {
	b := Defaults(behaviour.New(), rc)

	if rc != nil && rc.Response.ScriptFile != "" {
		if h.scripts == nil {
			server.Fail(c, http.StatusInternalServerError, fmt.Errorf("%w: no script runner", script.ErrUnsupportedScript))
			return
		}
		env := &script.Env{
			Behaviour: b,
			Request:   script.NewRequestContext(c.Request, PathParamsOf(c)),
			Resource:  rc,
			Logger:    server.Logger(c),
		}
		if err := h.scripts.Run(c.Request.Context(), rc, env); err != nil {
			server.Fail(c, http.StatusInternalServerError, err)
			return
		}
	}

	if b.IsImmediate() {
		server.Logger(c).Debug("responding immediately", "status", b.StatusCode, "file", b.ResponseFile)
		h.Emit(c, rc, b)
		return
	}
	fallback(c, b)
}

// Emit writes exactly the behaviour's status, headers and file, bypassing
// any plugin resolution.
func (h *Handler) Emit(c *gin.Context, rc *config.ResourceConfig, b *behaviour.Behaviour) {
	b.ApplyHeaders(c.Writer.Header())
	if !b.HasFile() {
		httputil.WriteEmpty(c.Writer, b.StatusCode)
		return
	}
	path := FilePath(rc, b.ResponseFile)
	data, err := os.ReadFile(path)
	if err != nil {
		server.Fail(c, http.StatusInternalServerError, fmt.Errorf("reading response file: %w", err))
		return
	}
	httputil.WriteBody(c.Writer, b.StatusCode, ContentType(rc, path), data)
}

// Object returns a gin handler serving rc as an OBJECT resource.
func (h *Handler) Object(rc *config.ResourceConfig) gin.HandlerFunc {
	var resolver ObjectResolver
	return func(c *gin.Context) {
		h.Handle(c, rc, func(c *gin.Context, b *behaviour.Behaviour) {
			resolver.Resolve(c, rc, b)
		})
	}
}

// Array returns a gin handler serving rc as an ARRAY resource. template is
// the path carrying the record's :param token; it is validated before the
// handler is built.
func (h *Handler) Array(rc *config.ResourceConfig, template string) (gin.HandlerFunc, error) {
	param, err := ValidateArrayPath(template)
	if err != nil {
		return nil, err
	}
	var resolver ArrayResolver
	return func(c *gin.Context) {
		h.Handle(c, rc, func(c *gin.Context, b *behaviour.Behaviour) {
			resolver.Resolve(c, rc, param, b)
		})
	}, nil
}
