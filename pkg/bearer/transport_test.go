package bearer_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stockdash/pkg/bearer"
)

func newEchoServer(t *testing.T, seen *[]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = append(*seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTransport_AttachesHeaderWhenTokenPresent(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := newEchoServer(t, &seen)

	client := &http.Client{
		Transport: bearer.New(bearer.TokenSourceFunc(func() string { return "tok123" })),
	}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, seen, 1)
	assert.Equal(t, "Bearer tok123", seen[0])
}

func TestTransport_ForwardsUnchangedWithoutToken(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := newEchoServer(t, &seen)

	client := &http.Client{
		Transport: bearer.New(bearer.TokenSourceFunc(func() string { return "" })),
	}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, seen, 1)
	assert.Empty(t, seen[0])
}

func TestTransport_TokenReadAtSendTime(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := newEchoServer(t, &seen)

	var token atomic.Value
	token.Store("first")

	client := &http.Client{
		Transport: bearer.New(bearer.TokenSourceFunc(func() string {
			return token.Load().(string)
		})),
	}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// Removing the token changes only later requests.
	token.Store("")

	resp, err = client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, seen, 2)
	assert.Equal(t, "Bearer first", seen[0])
	assert.Empty(t, seen[1])
}

func TestTransport_DoesNotMutateOriginalRequest(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := newEchoServer(t, &seen)

	rt := bearer.New(bearer.TokenSourceFunc(func() string { return "tok" }))

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("Authorization"), "original request must stay untouched")
	require.Len(t, seen, 1)
	assert.Equal(t, "Bearer tok", seen[0])
}

func TestTransport_ExistingHeaderWins(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := newEchoServer(t, &seen)

	rt := bearer.New(bearer.TokenSourceFunc(func() string { return "tok" }))

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Basic abc")

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, seen, 1)
	assert.Equal(t, "Basic abc", seen[0])
}

func TestTransport_CustomHeaderAndPrefix(t *testing.T) {
	t.Parallel()

	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Api-Token")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{
		Transport: bearer.New(
			bearer.TokenSourceFunc(func() string { return "tok" }),
			bearer.WithHeader("X-Api-Token"),
			bearer.WithPrefix(""),
		),
	}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "tok", got)
}
