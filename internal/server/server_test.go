package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"agent-assist-be/internal/bootstrap"
	"agent-assist-be/internal/config"
	"agent-assist-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{
			Name:               "agent-assist-be",
			Version:            "0.0.1",
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(t.TempDir(), "app.log"),
			LogLevel:           "error",
			CorsAllowedOrigins: "http://console.local",
		},
		Search: config.SearchConfig{Addresses: []string{"http://127.0.0.1:1"}, Index: "docs"},
		MLAPI:  config.MLAPIConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		NLP:    config.NLPConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		Store:  config.StoreConfig{Kind: "memory", Lifespan: time.Minute},
		Events: config.EventsConfig{Topic: "suggestions"},
	}

	container := bootstrap.NewContainer(cfg)
	t.Cleanup(container.Close)
	return New(cfg, container)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
	}{
		{name: "version", method: http.MethodGet, target: "/whisper/version", wantCode: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, target: "/api/notes", wantCode: http.StatusNotFound},
		{name: "suggestions need a chatkey", method: http.MethodGet, target: "/whisper/suggestions", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := srv.GetApp().Test(httptest.NewRequest(tt.method, tt.target, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var got serverutils.BaseResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.wantCode == http.StatusOK, got.Success)
		})
	}
}

func TestServer_CorsPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/whisper/suggestions", nil)
	req.Header.Set("Origin", "http://console.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := srv.GetApp().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://console.local", resp.Header.Get("Access-Control-Allow-Origin"))
}
