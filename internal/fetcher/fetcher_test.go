package fetcher

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
	"golang.org/x/time/rate"

	apperrors "sjsage522/dealbite/pkg/errors"
	"sjsage522/dealbite/services/cache"
)

const dealsPage = `<html><head><title>Deals</title>
<style>.x{color:red}</style><script>var price = "$99";</script></head>
<body>
<h1>Deals</h1>
<p>Order Now Get the <b>Biggie Bag</b> for $4.</p><p>Free fries</p>
<noscript>Enable JS for $1 deals</noscript>
<template><p>$2 hidden</p></template>
<!-- $3 comment -->
</body></html>`

func newTestFetcher(c cache.CacheService) *HTTPFetcher {
	return New(Options{
		Timeout:   2 * time.Second,
		BlockTime: time.Minute,
		Cache:     c,
		Rate:      rate.Inf,
	})
}

func TestVisibleText(t *testing.T) {
	text, err := VisibleText(strings.NewReader(dealsPage))
	require.NoError(t, err)
	assert.Equal(t, "Deals Order Now Get the Biggie Bag for $4. Free fries", text)
}

func TestVisibleTextKeepsDocumentOrder(t *testing.T) {
	text, err := VisibleText(strings.NewReader(`<p>A<b>B</b>C</p>`))
	require.NoError(t, err)
	assert.Equal(t, "A B C", text)
}

func TestFetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(dealsPage))
	}))
	defer srv.Close()

	f := newTestFetcher(cache.NewMemoryCache())
	text, err := f.FetchText(context.Background(), srv.URL+"/deals")
	require.NoError(t, err)
	assert.Contains(t, text, "Biggie Bag for $4.")
	assert.NotContains(t, text, "$99")
}

func TestFetchTextServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(cache.NewMemoryCache())
	_, err := f.FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
}

func TestFetchTextRateLimitBlocksHost(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := cache.NewMemoryCache()
	f := newTestFetcher(c)

	_, err := f.FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))

	_, err = f.FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "blocked host must not be requested again")

	host := strings.TrimPrefix(srv.URL, "http://")
	_, err = c.Get(blockKey(host))
	assert.NoError(t, err)
}

func TestFetchTextWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(430)
	}))
	defer srv.Close()

	f := newTestFetcher(nil)
	_, err := f.FetchText(context.Background(), srv.URL)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
}

func TestFetchTextInvalidURL(t *testing.T) {
	f := newTestFetcher(nil)
	_, err := f.FetchText(context.Background(), "not a url")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestFetchTextCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dealsPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher(nil)
	_, err := f.FetchText(ctx, srv.URL)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
}

func TestLimiterPerHost(t *testing.T) {
	f := newTestFetcher(nil)
	a := f.limiterFor("a.example")
	assert.Same(t, a, f.limiterFor("a.example"))
	assert.NotSame(t, a, f.limiterFor("b.example"))
}
