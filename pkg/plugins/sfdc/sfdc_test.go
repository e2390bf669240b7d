package sfdc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
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

const accountsJSON = `[
  {"Id": "0015000000VALDtAAP", "Name": "GenePoint"},
  {"Id": "001", "Name": "United Oil"}
]`

func newRouter(t *testing.T, extra map[string]string) *server.Router {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"account-config.yaml": "plugin: sfdc\nsObjectName: Account\nresponse:\n  file: accounts.json\n",
		"accounts.json":       accountsJSON,
	}
	for k, v := range extra {
		files[k] = v
	}
	var cfgFiles []config.ConfigFile
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	for name := range files {
		if strings.HasSuffix(name, "-config.yaml") {
			f, err := config.LoadFile(filepath.Join(dir, name))
			require.NoError(t, err)
			cfgFiles = append(cfgFiles, f)
		}
	}

	cfg := config.DefaultServerConfig()
	cfg.Port = 9090
	p, err := New(plugin.Dependencies{Config: cfg, Scripts: script.NewRunner(time.Second, nil)})
	require.NoError(t, err)
	require.NoError(t, p.(plugin.Configurable).LoadConfiguration(cfgFiles))

	r := server.NewRouter(gin.New(), nil)
	require.NoError(t, p.(plugin.Routable).ConfigureRoutes(r))
	return r
}

func do(r http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec
}

func TestSObjectName(t *testing.T) {
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"SELECT Name, Id from Account LIMIT 100", "Account", true},
		{"select Id FROM Contact", "Contact", true},
		{"SELECT Id FROM", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := SObjectName(tt.query)
		assert.Equal(t, tt.ok, ok, tt.query)
		assert.Equal(t, tt.want, got, tt.query)
	}
}

func TestEnrich(t *testing.T) {
	rec := map[string]any{"Id": "001", "Name": "A"}
	require.NoError(t, Enrich(rec, "v52.0", "Account"))
	assert.Equal(t, map[string]any{
		"type": "Account",
		"url":  "/services/data/v52.0/sobjects/Account/001",
	}, rec["attributes"])

	assert.ErrorIs(t, Enrich(map[string]any{"Name": "B"}, "v52.0", "Account"), ErrMissingID)
}

func TestToken(t *testing.T) {
	r := newRouter(t, nil)

	rec := do(r, http.MethodPost, "/services/oauth2/token", strings.NewReader("grant_type=password"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, AccessToken, body["access_token"])
	assert.Equal(t, "http://localhost:9090", body["instance_url"])
}

func TestQuery(t *testing.T) {
	r := newRouter(t, nil)

	for _, path := range []string{"/services/data/v52.0/query", "/services/data/v52.0/query/"} {
		rec := do(r, http.MethodGet, path+"?q=SELECT+Name+FROM+account", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body struct {
			Done      bool             `json:"done"`
			TotalSize int              `json:"totalSize"`
			Records   []map[string]any `json:"records"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Done)
		assert.Equal(t, 2, body.TotalSize)
		require.Len(t, body.Records, 2)
		attrs := body.Records[1]["attributes"].(map[string]any)
		assert.Equal(t, "Account", attrs["type"])
		assert.Equal(t, "/services/data/v52.0/sobjects/Account/001", attrs["url"])
	}
}

func TestQuery_Failures(t *testing.T) {
	r := newRouter(t, nil)

	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/services/data/v52.0/query?q=SELECT+Id", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/services/data/v52.0/query?q=SELECT+Id+FROM+Contact", nil).Code)
}

func TestQuery_RecordWithoutID(t *testing.T) {
	r := newRouter(t, map[string]string{
		"contact-config.yaml": "plugin: sfdc\nsObjectName: Contact\nresponse:\n  file: contacts.json\n",
		"contacts.json":       `[{"Name": "nobody"}]`,
	})

	rec := do(r, http.MethodGet, "/services/data/v52.0/query?q=SELECT+Name+FROM+Contact", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetSObject(t *testing.T) {
	r := newRouter(t, nil)

	rec := do(r, http.MethodGet, "/services/data/v52.0/sobjects/Account/001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "United Oil", body["Name"])
	assert.Equal(t, "/services/data/v52.0/sobjects/Account/001", body["attributes"].(map[string]any)["url"])

	rec = do(r, http.MethodGet, "/services/data/v52.0/sobjects/Account/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestGetSObject_Script(t *testing.T) {
	r := newRouter(t, map[string]string{
		"account-config.yaml": "plugin: sfdc\nsObjectName: Account\nresponse:\n  file: accounts.json\n  scriptFile: account.star\n",
		"account.star":        "respond().withStatusCode(503).immediately()\n",
	})

	rec := do(r, http.MethodGet, "/services/data/v52.0/sobjects/Account/001", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreate(t *testing.T) {
	r := newRouter(t, nil)

	rec := do(r, http.MethodPost, "/services/data/v52.0/sobjects/Account", strings.NewReader(`{"Name":"new"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	newID, ok := body["id"].(string)
	require.True(t, ok)
	assert.Regexp(t, `^[0-9A-Za-z]{1,11}$`, newID)

	rec = do(r, http.MethodPost, "/services/data/v52.0/sobjects/Account", strings.NewReader(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type trackingReader struct {
	r    io.Reader
	read bool
}

func (t *trackingReader) Read(p []byte) (int, error) {
	t.read = true
	return t.r.Read(p)
}

func TestUpdate(t *testing.T) {
	r := newRouter(t, nil)
	const target = "/services/data/v52.0/sobjects/Account/001"

	body := &trackingReader{r: strings.NewReader(`{"Name":"x"}`)}
	rec := do(r, http.MethodPost, target, body)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, body.read)

	rec = do(r, http.MethodPatch, target, strings.NewReader(`{"Name":"x"}`))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(r, http.MethodPost, target+"?_HttpMethod=PATCH", strings.NewReader(`{"Name":"x"}`))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, http.MethodPatch, target, strings.NewReader(`[broken`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
