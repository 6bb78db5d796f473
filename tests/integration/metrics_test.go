//go:build integration

package integration

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/booktrack/booktrack/internal/pkg/metrics"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrapeMetrics(t *testing.T) string {
	t.Helper()

	resp, err := testClient.WithoutValidation().GET("/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain; version=0.0.4")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_ExpositionFormat(t *testing.T) {
	client := newTestClient(t)

	// Generate at least one request so the vectors have children
	resp, err := client.GET("/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()

	body := scrapeMetrics(t)

	assert.Contains(t, body, "http_requests_total{")
	assert.Contains(t, body, "http_request_duration_seconds_bucket{")
	assert.Contains(t, body, "db_connection_failures_total")
	assert.Contains(t, body, "db_pool_connections{")
}

func TestMetrics_CounterAccumulatesExactly(t *testing.T) {
	client := newTestClient(t)
	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")
	before := promtestutil.ToFloat64(counter)

	const n = 10
	for range n {
		resp, err := client.GET("/healthz")
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, float64(n), promtestutil.ToFloat64(counter)-before)
}

func TestMetrics_NoLostUpdatesUnderConcurrentLoad(t *testing.T) {
	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/books", "200")
	before := promtestutil.ToFloat64(counter)

	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			client := testClient.WithoutValidation()
			for range perWorker {
				resp, err := client.GET("/books")
				if err != nil {
					t.Error(err)
					return
				}
				_ = resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(workers*perWorker), promtestutil.ToFloat64(counter)-before)
}

func TestMetrics_ErrorResponsesAreLabeled(t *testing.T) {
	client := newDownClient(t)
	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/books", "500")
	before := promtestutil.ToFloat64(counter)

	resp, err := client.GET("/books")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(counter)-before)

	body := scrapeMetrics(t)
	assert.True(t, strings.Contains(body, `status_code="500"`))
}
