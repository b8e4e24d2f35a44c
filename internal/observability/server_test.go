package observability_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musify/internal/observability"
)

func TestServer_Handler(t *testing.T) {
	ready := errors.New("db down")
	srv := observability.NewServer("127.0.0.1:0", func(context.Context) error { return ready }, log.New(io.Discard))
	srv.Metrics().ObserveRequest("/api/playlists/{id}", http.MethodGet, 200, 15*time.Millisecond)
	srv.Metrics().ObserveAuth(observability.AuthInvalidToken)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	status, body := get("/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `musify_http_requests_total{method="GET",route="/api/playlists/{id}",status="200"} 1`)
	assert.Contains(t, body, `musify_auth_requests_total{outcome="invalid_token"} 1`)

	status, _ = get("/healthz/liveness")
	assert.Equal(t, http.StatusOK, status)

	status, body = get("/healthz/readiness")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.True(t, strings.HasPrefix(body, "not ready"))

	ready = nil
	status, _ = get("/healthz/readiness")
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_StartStop(t *testing.T) {
	srv := observability.NewServer("127.0.0.1:0", nil, log.New(io.Discard))
	errCh, err := srv.Start()
	require.NoError(t, err)
	assert.NotEmpty(t, srv.Addr())

	_, err = srv.Start()
	assert.Error(t, err, "second start must fail")

	require.NoError(t, srv.Stop(context.Background()))
	_, open := <-errCh
	assert.False(t, open)
}
