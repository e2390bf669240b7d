package resource

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/getmockd/imposter/pkg/behaviour"
	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/dataset"
	"github.com/getmockd/imposter/pkg/httputil"
	"github.com/getmockd/imposter/pkg/script"
	"github.com/getmockd/imposter/pkg/server"
)

// DefaultContentType is used for files whose type cannot be derived.
const DefaultContentType = "application/octet-stream"

// FilePath resolves a response file against the resource's base directory.
func FilePath(rc *config.ResourceConfig, file string) string {
	if file == "" || filepath.IsAbs(file) || rc == nil || rc.BaseDir == "" {
		return file
	}
	return filepath.Join(rc.BaseDir, file)
}

// ContentType returns the resource's declared content type, falling back to
// the type implied by the file extension.
func ContentType(rc *config.ResourceConfig, file string) string {
	if rc != nil && rc.ContentType != "" {
		return rc.ContentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		return ct
	}
	return DefaultContentType
}

// PathParamsOf returns the request's path parameters keyed by name.
func PathParamsOf(c *gin.Context) map[string]string {
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}
	return params
}

// ObjectResolver serves a resource's response file.
type ObjectResolver struct{}

// Resolve writes the behaviour's status with the bytes of its response
// file, or with an empty body when none is set.
func (ObjectResolver) Resolve(c *gin.Context, rc *config.ResourceConfig, b *behaviour.Behaviour) {
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
	if rc != nil && rc.Response.Template {
		data = Render(data, script.NewRequestContext(c.Request, PathParamsOf(c)))
	}
	httputil.WriteBody(c.Writer, b.StatusCode, ContentType(rc, path), data)
}

// ArrayResolver serves single records from a dataset.
type ArrayResolver struct{}

// Resolve looks up the record whose param field equals the value of the
// param path parameter. A match is written as pretty JSON with status 200,
// whatever status the behaviour carries; no match yields 404 with an empty
// body.
func (ArrayResolver) Resolve(c *gin.Context, rc *config.ResourceConfig, param string, b *behaviour.Behaviour) {
	value := c.Param(param)
	file := ""
	if !b.Empty {
		file = FilePath(rc, b.ResponseFile)
	}
	ds, err := dataset.Load(file)
	if err != nil {
		server.Fail(c, http.StatusInternalServerError, err)
		return
	}
	b.ApplyHeaders(c.Writer.Header())
	record, ok := dataset.Find(ds, param, value)
	if !ok {
		server.Logger(c).Debug("record not found", "field", param, "value", value)
		httputil.WriteEmpty(c.Writer, http.StatusNotFound)
		return
	}
	contentType := httputil.ContentTypeJSON
	if rc != nil && rc.ContentType != "" {
		contentType = rc.ContentType
	}
	httputil.WriteBody(c.Writer, http.StatusOK, contentType, dataset.Encode(record))
}
