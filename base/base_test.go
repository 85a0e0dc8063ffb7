package base_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xostack/xodify/base"
	"github.com/xostack/xodify/internal/mockdify"
)

// newTestClient returns a client pointed at the mock server.
func newTestClient(t *testing.T, srv *mockdify.Server, opts ...base.Opt) *base.Client {
	t.Helper()
	opts = append([]base.Opt{base.WithHTTPClient(srv.Client())}, opts...)
	c, err := base.New("test-api-key", srv.BaseURL(), opts...)
	require.NoError(t, err)
	return c
}

func drain(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

// newSlowServer answers after delay unless the client gives up first.
func newSlowServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(delay):
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}
