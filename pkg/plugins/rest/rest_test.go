package rest

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
	"github.com/getmockd/imposter/pkg/resource"
	"github.com/getmockd/imposter/pkg/script"
	"github.com/getmockd/imposter/pkg/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const petsJSON = `[{"id": 1, "name": "Cat"}, {"id": 2, "name": "Dog"}]`

func setup(t *testing.T, configYAML string, extra map[string]string) *server.Router {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{"pets-config.yaml": configYAML, "pets.json": petsJSON}
	for k, v := range extra {
		files[k] = v
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	file, err := config.LoadFile(filepath.Join(dir, "pets-config.yaml"))
	require.NoError(t, err)

	p, err := New(plugin.Dependencies{Scripts: script.NewRunner(time.Second, nil)})
	require.NoError(t, err)
	require.NoError(t, p.(plugin.Configurable).LoadConfiguration([]config.ConfigFile{file}))

	r := server.NewRouter(gin.New(), nil)
	require.NoError(t, p.(plugin.Routable).ConfigureRoutes(r))
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPlugin_ObjectAndArray(t *testing.T) {
	r := setup(t, `plugin: rest
path: /pets
contentType: application/json
response:
  file: pets.json
resources:
  - path: /:id
    type: ARRAY
    response:
      file: pets.json
  - path: /status
    contentType: text/plain
    response:
      statusCode: 204
`, nil)

	rec := get(r, "/pets")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, petsJSON, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = get(r, "/pets/2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Dog"`)

	rec = get(r, "/pets/3")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, get(r, "/pets/status").Code)

	assert.ElementsMatch(t, []server.Route{
		{Method: http.MethodGet, Path: "/pets"},
		{Method: http.MethodGet, Path: "/pets/:id"},
		{Method: http.MethodGet, Path: "/pets/status"},
	}, r.Routes())
}

func TestPlugin_SubResourceInheritsContentType(t *testing.T) {
	r := setup(t, `plugin: rest
path: /api
contentType: application/vnd.pets+json
resources:
  - path: /pets
    response:
      file: pets.json
`, nil)

	rec := get(r, "/api/pets")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.pets+json", rec.Header().Get("Content-Type"))
}

func TestPlugin_Script(t *testing.T) {
	r := setup(t, `plugin: rest
path: /pets
resources:
  - path: /:id
    type: array
    response:
      file: pets.json
      scriptFile: pets.star
`, map[string]string{
		"pets.star": `if context.request.pathParams["id"] == "1":
    respond().withStatusCode(403).withEmpty().immediately()
`,
	})

	assert.Equal(t, http.StatusForbidden, get(r, "/pets/1").Code)
	assert.Equal(t, http.StatusOK, get(r, "/pets/2").Code)
}

func TestPlugin_ArrayWithoutParam(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`plugin: rest
path: /pets
resources:
  - path: /all
    type: ARRAY
    response:
      file: pets.json
`), 0644))
	file, err := config.LoadFile(path)
	require.NoError(t, err)

	p, err := New(plugin.Dependencies{})
	require.NoError(t, err)
	require.NoError(t, p.(plugin.Configurable).LoadConfiguration([]config.ConfigFile{file}))

	err = p.(plugin.Routable).ConfigureRoutes(server.NewRouter(gin.New(), nil))
	assert.ErrorIs(t, err, resource.ErrMissingPathParam)
}

func TestPlugin_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`plugin: rest
path: /pets
resources:
  - path: /x
    type: TABLE
`), 0644))
	file, err := config.LoadFile(path)
	require.NoError(t, err)

	p, err := New(plugin.Dependencies{})
	require.NoError(t, err)
	err = p.(plugin.Configurable).LoadConfiguration([]config.ConfigFile{file})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestPlugin_NoFiles(t *testing.T) {
	p, err := New(plugin.Dependencies{})
	require.NoError(t, err)
	require.NoError(t, p.(plugin.Configurable).LoadConfiguration([]config.ConfigFile{}))

	r := server.NewRouter(gin.New(), nil)
	require.NoError(t, p.(plugin.Routable).ConfigureRoutes(r))
	assert.Empty(t, r.Routes())
}
