// Package openapi mocks the operations of OpenAPI 3 documents. Each
// operation is served from its configured response, or from the examples
// declared in the document.
package openapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/gin-gonic/gin"

	"github.com/getmockd/imposter/pkg/behaviour"
	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/httputil"
	"github.com/getmockd/imposter/pkg/logging"
	"github.com/getmockd/imposter/pkg/plugin"
	"github.com/getmockd/imposter/pkg/resource"
	"github.com/getmockd/imposter/pkg/server"
)

// ID is the plugin identifier.
const ID = "openapi"

var pathParamPattern = regexp.MustCompile(`\{([^}/]+)\}`)

// Plugin serves every openapi configuration file.
type Plugin struct {
	log     *slog.Logger
	specs   SpecLoader
	handler *resource.Handler
	configs []*Config
}

// New creates the plugin. It requires the SpecLoader provided by SpecModule.
func New(deps plugin.Dependencies) (plugin.Plugin, error) {
	specs, err := plugin.ExtraAs[SpecLoader](deps, SpecLoaderKey)
	if err != nil {
		return nil, err
	}
	return &Plugin{
		log:     logging.ForPlugin(deps.Logger, ID),
		specs:   specs,
		handler: resource.NewHandler(deps.Scripts),
	}, nil
}

// Registration describes the plugin for the catalogue.
func Registration() plugin.Registration {
	return plugin.Registration{
		ID:          ID,
		Aliases:     []string{"io.gatehill.imposter.plugin.openapi.OpenApiPluginImpl"},
		Description: "Operations and examples from OpenAPI 3 documents",
		Modules:     []plugin.Module{SpecModule},
		New:         New,
	}
}

func (p *Plugin) ID() string { return ID }

// LoadConfiguration decodes each file.
func (p *Plugin) LoadConfiguration(files []config.ConfigFile) error {
	configs := make([]*Config, 0, len(files))
	for _, f := range files {
		cfg := &Config{}
		if err := config.Decode(f, cfg); err != nil {
			return err
		}
		configs = append(configs, cfg)
	}
	p.configs = configs
	return nil
}

// ConvertPath turns an OpenAPI path template into a router path:
// /pets/{petId} becomes /pets/:petId.
func ConvertPath(specPath string) string {
	return pathParamPattern.ReplaceAllString(specPath, ":$1")
}

// JoinPath joins a serving prefix and an operation path with exactly one
// slash between them.
func JoinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case strings.HasSuffix(prefix, "/") && strings.HasPrefix(path, "/"):
		return prefix + path[1:]
	case strings.HasSuffix(prefix, "/") || strings.HasPrefix(path, "/"):
		return prefix + path
	default:
		return prefix + "/" + path
	}
}

// ConfigureRoutes loads each document and registers one route per
// operation.
func (p *Plugin) ConfigureRoutes(r plugin.Router) error {
	for _, cfg := range p.configs {
		specFile := resource.FilePath(cfg.RootResource(), cfg.SpecFile)
		doc, err := p.specs.Load(specFile)
		if err != nil {
			return err
		}

		prefix := cfg.Path
		if !cfg.StripServerPath {
			prefix += ServerPath(doc)
		}

		specPaths := make([]string, 0, doc.Paths.Len())
		for specPath := range doc.Paths.Map() {
			specPaths = append(specPaths, specPath)
		}
		sort.Strings(specPaths)

		for _, specPath := range specPaths {
			item := doc.Paths.Value(specPath)
			methods := make([]string, 0)
			for method := range item.Operations() {
				methods = append(methods, method)
			}
			sort.Strings(methods)

			for _, method := range methods {
				route := &routers.Route{
					Spec:      doc,
					Path:      specPath,
					PathItem:  item,
					Method:    method,
					Operation: item.GetOperation(method),
				}
				fullPath := JoinPath(prefix, ConvertPath(specPath))
				p.log.Debug("adding mock endpoint", "method", method, logging.KeyResource, fullPath)
				if err := r.Handle(method, fullPath, p.operationHandler(cfg, route)); err != nil {
					return fmt.Errorf("%s: %w", cfg.SpecFile, err)
				}
			}
		}
	}
	return nil
}

func (p *Plugin) operationHandler(cfg *Config, route *routers.Route) gin.HandlerFunc {
	rc := cfg.resourceFor(route.Path, route.Method)
	if rc.Response.StatusCode == 0 {
		rc.Response.StatusCode = DefaultStatus(route.Operation)
	}

	return func(c *gin.Context) {
		if cfg.Validation.Request {
			if err := ValidateRequest(c.Request, route, resource.PathParamsOf(c)); err != nil {
				p.reject(c, err)
				return
			}
		}
		p.handler.Handle(c, &rc, func(c *gin.Context, b *behaviour.Behaviour) {
			p.respond(c, &rc, route.Operation, b)
		})
	}
}

func (p *Plugin) reject(c *gin.Context, err error) {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		server.Fail(c, http.StatusBadRequest, err)
		return
	}
	server.Logger(c).Info("request failed validation", "errors", len(verr.Errors))
	c.Abort()
	httputil.WriteErrorWithDetails(c.Writer, http.StatusBadRequest, "validation_failed", ErrInvalidRequest.Error(), verr.Errors)
}

// respond serves the behaviour's file when one is set, otherwise the
// example the OpenAPI document declares for the behaviour's status.
func (p *Plugin) respond(c *gin.Context, rc *config.ResourceConfig, op *openapi3.Operation, b *behaviour.Behaviour) {
	if b.HasFile() {
		resource.ObjectResolver{}.Resolve(c, rc, b)
		return
	}

	b.ApplyHeaders(c.Writer.Header())
	ex, ok := BuildExample(FindResponse(op, b.StatusCode))
	if !ok {
		server.Logger(c).Warn("no response content in OpenAPI document", "status", b.StatusCode)
		httputil.WriteEmpty(c.Writer, b.StatusCode)
		return
	}

	contentType := ex.ContentType
	if rc.ContentType != "" {
		contentType = rc.ContentType
	}
	if c.Writer.Header().Get("Content-Type") != "" {
		contentType = ""
	}
	httputil.WriteBody(c.Writer, b.StatusCode, contentType, ex.Body)
}
