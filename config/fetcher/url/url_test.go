package url

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("port: 3000\n"))
	}))
	t.Cleanup(server.Close)

	fetcher := New(server.URL)

	data, err := fetcher.Fetch()

	require.NoError(t, err)
	assert.Equal(t, "port: 3000\n", string(data))
	assert.Equal(t, server.URL, fetcher.URL())
}

func TestFetcher_Fetch_RefetchesEveryCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		_, _ = w.Write([]byte(strings.Repeat("x", int(n))))
	}))
	t.Cleanup(server.Close)

	fetcher := New(server.URL)

	first, err := fetcher.Fetch()
	require.NoError(t, err)

	second, err := fetcher.Fetch()
	require.NoError(t, err)

	assert.Equal(t, "x", string(first))
	assert.Equal(t, "xx", string(second))
}

func TestFetcher_Fetch_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	_, err := New(server.URL).Fetch()

	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestFetcher_Fetch_BodyTooLarge(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	t.Cleanup(server.Close)

	_, err := New(server.URL, WithMaxBytes(4)).Fetch()
	require.ErrorIs(t, err, ErrBodyTooLarge)

	data, err := New(server.URL, WithMaxBytes(10)).Fetch()
	require.NoError(t, err)
	assert.Len(t, data, 10)
}

func TestFetcher_Fetch_SendsHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)

	_, err := New(server.URL).Fetch()
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	data, err := New(server.URL, WithHeader("Authorization", "Bearer token")).Fetch()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFetcher_FetchContext_Cancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(server.URL).FetchContext(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetcher_Fetch_EmptyURL(t *testing.T) {
	t.Parallel()

	_, err := New("").Fetch()
	require.ErrorIs(t, err, ErrEmptyURL)
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	fetcher := New("http://example.invalid", WithTimeout(time.Second))
	assert.Equal(t, time.Second, fetcher.client.Timeout)
}
