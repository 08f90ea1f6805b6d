package filestore

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_SaveAndRead(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "", zap.NewNop())

	w := do(s, http.MethodPost, DefaultPath, `{"file_name":"../../trend.json","data":"{\"キャベツ\":{}}"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"File saved successfully"}`, w.Body.String())

	saved, err := os.ReadFile(filepath.Join(dir, "trend.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"キャベツ":{}}`, string(saved))

	w = do(s, http.MethodGet, DefaultPath+"?file_name=trend.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"キャベツ":{}}`, w.Body.String())

	w = do(s, http.MethodGet, "/vegetable/trend.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestServer_EndpointBesideStoredFiles(t *testing.T) {
	s := New(t.TempDir(), "", zap.NewNop())

	w := do(s, http.MethodPost, "/vegetable/api_endpoint.php", `{"file_name":"rate.json","data":"{}"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(s, http.MethodGet, "/vegetable/api_endpoint.php", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(s, http.MethodGet, "/vegetable/rate.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{}", w.Body.String())
}

func TestServer_Errors(t *testing.T) {
	s := New(t.TempDir(), "", zap.NewNop())

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   int
		errMsg string
	}{
		{"missing file", http.MethodGet, DefaultPath + "?file_name=rate.json", "", http.StatusNotFound, "File not found"},
		{"missing static file", http.MethodGet, "/vegetable/rate.json", "", http.StatusNotFound, "File not found"},
		{"no file name", http.MethodGet, DefaultPath, "", http.StatusBadRequest, "File name not provided"},
		{"no data", http.MethodPost, DefaultPath, `{"file_name":"a.json"}`, http.StatusBadRequest, "Invalid data format"},
		{"not json", http.MethodPost, DefaultPath, `file_name=a.json`, http.StatusBadRequest, "Invalid data format"},
		{"empty name", http.MethodPost, DefaultPath, `{"file_name":"","data":"x"}`, http.StatusBadRequest, "Invalid data format"},
		{"put", http.MethodPut, DefaultPath, `{}`, http.StatusMethodNotAllowed, "Method not allowed"},
		{"delete", http.MethodDelete, DefaultPath, "", http.StatusMethodNotAllowed, "Method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.errMsg+`"}`, w.Body.String())
		})
	}
}
