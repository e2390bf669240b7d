package script

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/getmockd/imposter/pkg/behaviour"
	"github.com/getmockd/imposter/pkg/config"
)

// Errors returned by engines and the Runner.
var (
	ErrUnsupportedScript = errors.New("unsupported script type")
	ErrScriptTimeout     = errors.New("script execution timed out")
	ErrScriptFailed      = errors.New("script execution failed")
)

// Source is a script to execute.
type Source struct {
	// Name identifies the script in error messages, usually its path.
	Name string

	// Code is the script text.
	Code []byte
}

// RequestContext is the view of the incoming request offered to scripts
// and response templates.
type RequestContext struct {
	Method      string
	Path        string
	PathParams  map[string]string
	QueryParams map[string]string
	Headers     map[string]string
	Body        string
}

// NewRequestContext captures r. The body is read fully and restored so that
// later handlers can read it again. Only the first value of repeated query
// parameters and headers is kept.
func NewRequestContext(r *http.Request, pathParams map[string]string) RequestContext {
	rc := RequestContext{
		Method:      r.Method,
		Path:        r.URL.Path,
		PathParams:  make(map[string]string, len(pathParams)),
		QueryParams: make(map[string]string),
		Headers:     make(map[string]string, len(r.Header)),
	}
	for k, v := range pathParams {
		rc.PathParams[k] = v
	}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			rc.QueryParams[k] = v[0]
		}
	}
	for k, v := range r.Header {
		if len(v) > 0 {
			rc.Headers[k] = v[0]
		}
	}
	if r.Body != nil && r.Body != http.NoBody {
		data, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err == nil {
			rc.Body = string(data)
		}
		r.Body = io.NopCloser(bytes.NewReader(data))
	}
	return rc
}

// Map returns the request as nested generic maps, rooted at "request".
func (rc RequestContext) Map() map[string]any {
	return map[string]any{
		"request": map[string]any{
			"method":      rc.Method,
			"path":        rc.Path,
			"pathParams":  stringMap(rc.PathParams),
			"queryParams": stringMap(rc.QueryParams),
			"headers":     stringMap(rc.Headers),
			"body":        rc.Body,
		},
	}
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Env is everything a script can see.
type Env struct {
	Behaviour *behaviour.Behaviour
	Request   RequestContext
	Resource  *config.ResourceConfig
	Logger    *slog.Logger
}

// Engine executes one kind of script.
type Engine interface {
	Execute(ctx context.Context, src Source, env *Env) error
}
