package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		data := map[string]string{"foo": "bar"}

		WriteJSON(rec, http.StatusOK, data)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]string
		err := json.Unmarshal(rec.Body.Bytes(), &result)
		require.NoError(t, err)
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteBody(t *testing.T) {
	t.Parallel()

	t.Run("sets content type and body", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteBody(rec, http.StatusAccepted, "text/csv", []byte("a,b"))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Equal(t, "a,b", rec.Body.String())
	})

	t.Run("keeps existing content type when blank", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		rec.Header().Set("Content-Type", "application/xml")

		WriteBody(rec, http.StatusOK, "", []byte("<a/>"))

		assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	})
}

func TestWriteEmpty(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteEmpty(rec, http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "invalid_input", "Name is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "invalid_input", result["error"])
	assert.Equal(t, "Name is required", result["message"])
}

func TestWriteErrorWithDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	details := map[string]string{"field": "email", "reason": "invalid format"}

	WriteErrorWithDetails(rec, http.StatusBadRequest, "validation_error", "Validation failed", details)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "validation_error", result["error"])
	assert.NotNil(t, result["details"])
}

func TestWriteNoContent(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteNoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWriteCreated(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteCreated(rec, map[string]string{"id": "new-123"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "new-123")
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "method_not_allowed", ErrorCode(http.StatusMethodNotAllowed))
	assert.Equal(t, "internal_server_error", ErrorCode(http.StatusInternalServerError))
	assert.Equal(t, "bad_request", ErrorCode(http.StatusBadRequest))
	assert.Equal(t, "error", ErrorCode(799))
}
