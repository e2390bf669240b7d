// Package sfdc mocks the subset of the Salesforce REST API used by typical
// integrations: OAuth token exchange, SOQL queries, record retrieval,
// creation and update.
package sfdc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/getmockd/imposter/internal/id"
	"github.com/getmockd/imposter/pkg/behaviour"
	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/dataset"
	"github.com/getmockd/imposter/pkg/httputil"
	"github.com/getmockd/imposter/pkg/logging"
	"github.com/getmockd/imposter/pkg/plugin"
	"github.com/getmockd/imposter/pkg/resource"
	"github.com/getmockd/imposter/pkg/server"
)

// ID is the plugin identifier.
const ID = "sfdc"

// FieldID is the record identifier field.
const FieldID = "Id"

// AccessToken is returned by the OAuth endpoint.
const AccessToken = "dummyAccessToken"

// Request errors.
var (
	ErrNoSObjectName  = errors.New("could not determine SObject name from query")
	ErrUnknownSObject = errors.New("no mock configuration for SObject")
	ErrMissingID      = errors.New("record missing Id field")
)

// Plugin serves every sfdc configuration file.
type Plugin struct {
	log       *slog.Logger
	handler   *resource.Handler
	serverURL string
	configs   []*Config
}

// New creates the plugin.
func New(deps plugin.Dependencies) (plugin.Plugin, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultServerConfig()
	}
	return &Plugin{
		log:       logging.ForPlugin(deps.Logger, ID),
		handler:   resource.NewHandler(deps.Scripts),
		serverURL: cfg.ResolveServerURL(),
	}, nil
}

// Registration describes the plugin for the catalogue.
func Registration() plugin.Registration {
	return plugin.Registration{
		ID:          ID,
		Aliases:     []string{"salesforce", "com.gatehill.imposter.plugin.sfdc.SfdcPluginImpl"},
		Description: "Salesforce-style SObject record API",
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

type route struct {
	method, path string
	h            gin.HandlerFunc
}

// ConfigureRoutes registers the API endpoints.
func (p *Plugin) ConfigureRoutes(r plugin.Router) error {
	routes := []route{
		{http.MethodPost, "/services/oauth2/token", p.handleToken},
		{http.MethodGet, "/services/data/:apiVersion/query", p.handleQuery},
		{http.MethodGet, "/services/data/:apiVersion/query/", p.handleQuery},
		{http.MethodPost, "/services/data/:apiVersion/sobjects/:sObjectName", p.handleCreate},
		{http.MethodPatch, "/services/data/:apiVersion/sobjects/:sObjectName/:sObjectId", p.handleUpdate},
		{http.MethodPost, "/services/data/:apiVersion/sobjects/:sObjectName/:sObjectId", p.handleUpdate},
	}
	for _, cfg := range p.configs {
		routes = append(routes, route{http.MethodGet, "/services/data/:apiVersion/sobjects/" + cfg.SObjectName + "/:sObjectId", p.handleGet(cfg)})
	}

	for _, rt := range routes {
		if err := r.Handle(rt.method, rt.path, rt.h); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plugin) handleToken(c *gin.Context) {
	server.Logger(c).Info("handling oauth request")
	httputil.WriteJSON(c.Writer, http.StatusOK, map[string]string{
		"access_token": AccessToken,
		"instance_url": p.serverURL,
	})
}

func (p *Plugin) handleQuery(c *gin.Context) {
	apiVersion := c.Param("apiVersion")
	query := c.Query("q")

	name, ok := SObjectName(query)
	if !ok {
		server.Fail(c, http.StatusInternalServerError, fmt.Errorf("%w: %q", ErrNoSObjectName, query))
		return
	}
	cfg := p.find(name)
	if cfg == nil {
		server.Fail(c, http.StatusInternalServerError, fmt.Errorf("%w: %s", ErrUnknownSObject, name))
		return
	}

	p.handler.Handle(c, cfg.RootResource(), func(c *gin.Context, b *behaviour.Behaviour) {
		records, err := p.load(cfg, b)
		if err != nil {
			server.Fail(c, http.StatusInternalServerError, err)
			return
		}
		out := make([]any, 0, len(records))
		for _, rec := range records {
			if err := Enrich(rec, apiVersion, cfg.SObjectName); err != nil {
				server.Fail(c, http.StatusInternalServerError, err)
				return
			}
			out = append(out, rec)
		}

		server.Logger(c).Info("returning query results", "count", len(out), "query", query)
		b.ApplyHeaders(c.Writer.Header())
		httputil.WriteBody(c.Writer, http.StatusOK, httputil.ContentTypeJSON, dataset.Encode(map[string]any{
			"done":      true,
			"records":   out,
			"totalSize": len(out),
		}))
	})
}

func (p *Plugin) handleGet(cfg *Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		p.handler.Handle(c, cfg.RootResource(), func(c *gin.Context, b *behaviour.Behaviour) {
			apiVersion := c.Param("apiVersion")
			sObjectID := c.Param("sObjectId")

			records, err := p.load(cfg, b)
			if err != nil {
				server.Fail(c, http.StatusInternalServerError, err)
				return
			}
			rec, ok := dataset.Find(records, FieldID, sObjectID)
			if !ok {
				server.Logger(c).Info("sobject not found", "type", cfg.SObjectName, "id", sObjectID)
				httputil.WriteEmpty(c.Writer, http.StatusNotFound)
				return
			}
			if err := Enrich(rec, apiVersion, cfg.SObjectName); err != nil {
				server.Fail(c, http.StatusInternalServerError, err)
				return
			}
			b.ApplyHeaders(c.Writer.Header())
			httputil.WriteBody(c.Writer, http.StatusOK, httputil.ContentTypeJSON, dataset.Encode(rec))
		})
	}
}

func (p *Plugin) handleCreate(c *gin.Context) {
	name := c.Param("sObjectName")
	if _, err := readJSON(c.Request.Body); err != nil {
		server.Fail(c, http.StatusBadRequest, err)
		return
	}

	server.Logger(c).Info("received create request", "type", name)
	httputil.WriteBody(c.Writer, http.StatusCreated, httputil.ContentTypeJSON, dataset.Encode(map[string]any{
		"id":      id.Record(),
		"success": true,
	}))
}

// handleUpdate accepts PATCH, or POST with _HttpMethod=PATCH for clients
// that cannot send PATCH. The method is checked before the body is read.
func (p *Plugin) handleUpdate(c *gin.Context) {
	if c.Request.Method != http.MethodPatch && c.Query("_HttpMethod") != http.MethodPatch {
		server.Fail(c, http.StatusMethodNotAllowed, fmt.Errorf("update requires PATCH, got %s", c.Request.Method))
		return
	}
	if _, err := readJSON(c.Request.Body); err != nil {
		server.Fail(c, http.StatusBadRequest, err)
		return
	}

	server.Logger(c).Info("received update request", "type", c.Param("sObjectName"), "id", c.Param("sObjectId"))
	c.Writer.Header().Set("Content-Type", httputil.ContentTypeJSON)
	httputil.WriteNoContent(c.Writer)
}

func (p *Plugin) find(name string) *Config {
	for _, cfg := range p.configs {
		if strings.EqualFold(cfg.SObjectName, name) {
			return cfg
		}
	}
	return nil
}

func (p *Plugin) load(cfg *Config, b *behaviour.Behaviour) (dataset.Dataset, error) {
	file := ""
	if !b.Empty {
		file = resource.FilePath(cfg.RootResource(), b.ResponseFile)
	}
	return dataset.Load(file)
}

// SObjectName returns the token following FROM in a SOQL query.
func SObjectName(query string) (string, bool) {
	tokens := strings.Fields(query)
	for i := 0; i < len(tokens)-1; i++ {
		if strings.EqualFold(tokens[i], "FROM") {
			return tokens[i+1], true
		}
	}
	return "", false
}

// Enrich adds the attributes envelope to rec.
func Enrich(rec dataset.Record, apiVersion, sObjectName string) error {
	sObjectID, ok := dataset.Scalar(rec[FieldID])
	if !ok {
		return ErrMissingID
	}
	rec["attributes"] = map[string]any{
		"type": sObjectName,
		"url":  RecordURL(apiVersion, sObjectName, sObjectID),
	}
	return nil
}

// RecordURL is the API path of a single record.
func RecordURL(apiVersion, sObjectName, sObjectID string) string {
	return "/services/data/" + apiVersion + "/sobjects/" + sObjectName + "/" + sObjectID
}

// readJSON reads and parses a request body. An empty body is accepted.
func readJSON(body io.Reader) (any, error) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return v, nil
}
