//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthz_OK(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/healthz")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestHealthz_SurvivesDatabaseOutage(t *testing.T) {
	client := newDownClient(t)

	resp, err := client.GET("/healthz")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestReadyz_Ready(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/readyz")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", decodeBody(t, resp)["status"])
}

func TestReadyz_DatabaseUnreachable(t *testing.T) {
	client := newDownClient(t)

	resp, err := client.GET("/readyz")
	require.NoError(t, err)

	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Database not ready", decodeBody(t, resp)["detail"])
}

func TestStartup_Started(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/startup")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "started", decodeBody(t, resp)["status"])
}

func TestStartup_ReportsStartedEvenWhenDatabaseIsDown(t *testing.T) {
	// The flag only proves the pool object was constructed; readiness
	// is the probe that notices an unreachable database.
	client := newDownClient(t)

	resp, err := client.GET("/startup")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "started", decodeBody(t, resp)["status"])
}

func TestVersion(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/version")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["version"])
	assert.NotEmpty(t, body["commit"])
}
