package openapi

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getmockd/imposter/pkg/plugin"
)

// SpecLoaderKey is the dependency key under which SpecModule provides the
// SpecLoader.
const SpecLoaderKey = "openapi.specLoader"

// SpecLoader parses OpenAPI documents.
type SpecLoader interface {
	Load(path string) (*openapi3.T, error)
}

// SpecModule provides a caching file SpecLoader to the plugin.
var SpecModule = plugin.Module{
	Name: "openapi-spec",
	Configure: func(deps *plugin.Dependencies) error {
		deps.Provide(SpecLoaderKey, NewFileSpecLoader())
		return nil
	},
}

// FileSpecLoader loads documents from disk, following external references,
// and caches them by absolute path.
type FileSpecLoader struct {
	mu    sync.Mutex
	specs map[string]*openapi3.T
}

// NewFileSpecLoader returns an empty loader.
func NewFileSpecLoader() *FileSpecLoader {
	return &FileSpecLoader{specs: make(map[string]*openapi3.T)}
}

// Load parses and validates the document at path. Example values are not
// validated against their schemas.
func (l *FileSpecLoader) Load(path string) (*openapi3.T, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if doc, ok := l.specs[abs]; ok {
		return doc, nil
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec from file %s: %w", path, err)
	}
	if err := doc.Validate(context.Background(), openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec %s: %w", path, err)
	}

	l.specs[abs] = doc
	return doc, nil
}

// ServerPath returns the path component of the document's first server
// entry, without a trailing slash.
func ServerPath(doc *openapi3.T) string {
	if doc == nil || len(doc.Servers) == 0 || doc.Servers[0] == nil {
		return ""
	}
	u, err := url.Parse(doc.Servers[0].URL)
	if err != nil {
		return ""
	}
	p := u.Path
	for len(p) > 0 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}
