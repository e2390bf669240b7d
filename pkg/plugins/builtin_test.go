package plugins

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/plugin"
	"github.com/getmockd/imposter/pkg/script"
	"github.com/getmockd/imposter/pkg/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCatalogue(t *testing.T) {
	cat := Catalogue()

	var ids []string
	for _, reg := range cat.List() {
		ids = append(ids, reg.ID)
		assert.NotEmpty(t, reg.Description, reg.ID)
	}
	assert.Equal(t, []string{"detector", "openapi", "rest", "sfdc"}, ids)
	assert.Equal(t, "rest", cat.Canonical("com.gatehill.imposter.plugin.rest.RestPluginImpl"))
	assert.Equal(t, "sfdc", cat.Canonical("salesforce"))
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"pets-config.yaml": `plugin: rest
path: /pets
contentType: application/json
response:
  file: pets.json
resources:
  - path: /:id
    type: array
    response:
      file: pets.json
`,
		"pets.json":           `[{"id": 1, "name": "Cat"}, {"id": 2, "name": "Dog"}]`,
		"account-config.json": `{"pluginClass": "com.gatehill.imposter.plugin.sfdc.SfdcPluginImpl", "sObjectName": "Account", "response": {"file": "accounts.json"}}`,
		"accounts.json":       `[{"Id": "001", "Name": "A"}]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	groups, err := config.Distribute([]string{dir})
	require.NoError(t, err)

	cfg := config.DefaultServerConfig()
	cfg.ConfigDirs = []string{dir}
	deps := plugin.Dependencies{Config: cfg, Scripts: script.NewRunner(time.Second, nil)}
	reg, err := plugin.NewLoader(Catalogue(), deps, groups).Load(nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"detector", "rest", "sfdc"}, reg.Identifiers())

	srv := server.New(cfg, server.Options{Version: "test"})
	require.NoError(t, srv.ConfigureRoutes(reg))

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	rec := get("/pets")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, files["pets.json"], rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = get("/pets/2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Dog"`)

	assert.Equal(t, http.StatusNotFound, get("/pets/3").Code)
	assert.Equal(t, http.StatusOK, get("/services/data/v52.0/sobjects/Account/001").Code)
	assert.Equal(t, http.StatusOK, get("/system/status").Code)
}

func TestEndToEnd_UnknownPlugin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x-config.yaml"), []byte("plugin: hbase\n"), 0644))

	groups, err := config.Distribute([]string{dir})
	require.NoError(t, err)

	_, err = plugin.NewLoader(Catalogue(), plugin.Dependencies{}, groups).Load(nil)
	assert.ErrorIs(t, err, plugin.ErrUnknownPlugin)
}
