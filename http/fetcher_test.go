package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/lawofone"
	lawhttp "github.com/fwojciec/lawofone/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns status and body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := lawhttp.NewFetcher()
		defer fetcher.Close()

		status, body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "<html><body>Hello World</body></html>", body)
	})

	t.Run("sends user agent and uses GET", func(t *testing.T) {
		t.Parallel()

		type seen struct{ ua, method string }
		ch := make(chan seen, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ch <- seen{ua: r.Header.Get("User-Agent"), method: r.Method}
		}))
		defer server.Close()

		fetcher := lawhttp.NewFetcher(lawhttp.WithUserAgent("test-agent"))
		_, _, err := fetcher.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		got := <-ch
		assert.Equal(t, "test-agent", got.ua)
		assert.Equal(t, http.MethodGet, got.method)
	})

	t.Run("non-200 status is not an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		fetcher := lawhttp.NewFetcher()

		status, body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "404 Not Found", body)
	})

	t.Run("caps body size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("0123456789"))
		}))
		defer server.Close()

		fetcher := lawhttp.NewFetcher(lawhttp.WithMaxBodyBytes(4))

		_, body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "0123", body)
	})

	t.Run("timeout is a transport error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := lawhttp.NewFetcher(lawhttp.WithTimeout(10 * time.Millisecond))

		_, _, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, lawofone.ETRANSPORT, lawofone.ErrorCode(err))
	})

	t.Run("canceled context is a transport error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		fetcher := lawhttp.NewFetcher()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
		assert.Equal(t, lawofone.ETRANSPORT, lawofone.ErrorCode(err))
	})

	t.Run("non-existent host is a transport error", func(t *testing.T) {
		t.Parallel()

		fetcher := lawhttp.NewFetcher(lawhttp.WithTimeout(100 * time.Millisecond))

		_, _, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
		assert.Equal(t, lawofone.ETRANSPORT, lawofone.ErrorCode(err))
	})

	t.Run("malformed URL is invalid", func(t *testing.T) {
		t.Parallel()

		fetcher := lawhttp.NewFetcher()

		_, _, err := fetcher.Fetch(context.Background(), "://bad")
		require.Error(t, err)
		assert.Equal(t, lawofone.EINVALID, lawofone.ErrorCode(err))
	})
}

// Compile-time verification that Fetcher implements lawofone.Fetcher
var _ lawofone.Fetcher = (*lawhttp.Fetcher)(nil)
