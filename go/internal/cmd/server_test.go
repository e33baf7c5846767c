package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_HealthAndMetrics(t *testing.T) {
	clearEnv(t)
	config := defaultConfig()

	services, err := setupServices(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(services.Close)

	server := httptest.NewServer(setupServer(config, services).Handler)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Healthy)
	assert.Equal(t, componentDisabled, status.SharedCache)
	assert.Equal(t, componentDisabled, status.Database)
	assert.Equal(t, componentLocal, status.Events)

	metricsResp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
	assert.True(t, strings.HasPrefix(metricsResp.Header.Get("Content-Type"), "text/plain"))

	wsStats, err := http.Get(server.URL + "/ws/stats")
	require.NoError(t, err)
	defer wsStats.Body.Close()
	assert.Equal(t, http.StatusOK, wsStats.StatusCode)
}
