package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRobotsTestPolicy(t *testing.T, srvURL string) RobotsPolicy {
	t.Helper()
	origin, err := url.Parse(srvURL)
	require.NoError(t, err)
	client := &http.Client{Timeout: 2 * time.Second}
	return NewRobotsSession(origin, client, "test-agent", zap.NewNop())
}

func TestRobotsSession_DisallowedPath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	policy := newRobotsTestPolicy(t, srv.URL)
	ctx := context.Background()

	require.True(t, policy.Allowed(ctx, srv.URL+"/public"))
	require.False(t, policy.Allowed(ctx, srv.URL+"/private/page"))
}

func TestRobotsSession_FetchedOncePerSession(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches.Add(1)
			fmt.Fprint(w, "User-agent: *\nDisallow: /blocked\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	policy := newRobotsTestPolicy(t, srv.URL)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		policy.Allowed(ctx, fmt.Sprintf("%s/page-%d", srv.URL, i))
	}
	require.Equal(t, int32(1), fetches.Load())
}

func TestRobotsSession_UnreachableDefaultsToAllow(t *testing.T) {
	t.Parallel()

	// Nothing listens on this address.
	policy := newRobotsTestPolicy(t, "http://127.0.0.1:1")
	require.True(t, policy.Allowed(context.Background(), "http://127.0.0.1:1/anything"))
}

func TestRobotsSession_NotFoundDefaultsToAllow(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	policy := newRobotsTestPolicy(t, srv.URL)
	require.True(t, policy.Allowed(context.Background(), srv.URL+"/anything"))
}

func TestRobotsSession_AllowOverridesDisallowOnSpecificity(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /docs/\nAllow: /docs/public/\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	policy := newRobotsTestPolicy(t, srv.URL)
	ctx := context.Background()

	require.False(t, policy.Allowed(ctx, srv.URL+"/docs/internal"))
	require.True(t, policy.Allowed(ctx, srv.URL+"/docs/public/guide"))
}
