package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleepClient(baseURL string) *Client {
	c := New(baseURL, nil, nil)
	c.BaseDelay = time.Microsecond
	return c
}

func TestFetch_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := noSleepClient(srv.URL)
	data, err := c.Fetch(context.Background(), "/x", nil, false, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetch_RetryBoundExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := noSleepClient(srv.URL)
	c.MaxRetries = 2
	_, err := c.Fetch(context.Background(), "/x", nil, false, "", nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls)) // maxRetries+1 attempts
}

func TestFetch_PermanentErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := noSleepClient(srv.URL)
	_, err := c.Fetch(context.Background(), "/x", nil, false, "", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

type fakeCache struct {
	store map[string][]byte
}

func (f *fakeCache) Get(key string) ([]byte, bool) { v, ok := f.store[key]; return v, ok }
func (f *fakeCache) Set(key string, data []byte, ttl time.Duration) {
	if f.store == nil {
		f.store = map[string][]byte{}
	}
	f.store[key] = data
}

func TestFetch_CacheHitSkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	cache := &fakeCache{}
	c := New(srv.URL, cache, nil)
	c.BaseDelay = time.Microsecond

	data1, err := c.Fetch(context.Background(), "/x", nil, true, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data1))

	data2, err := c.Fetch(context.Background(), "/x", nil, true, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data2))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestBackoff_RetryAfterSecondsIsFloor(t *testing.T) {
	c := noSleepClient("http://example.invalid")
	d := c.backoff(1, "100")
	assert.Equal(t, 100*time.Second, d)
}

func TestBackoff_RetryAfterHTTPDate(t *testing.T) {
	c := noSleepClient("http://example.invalid")
	future := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
	d := c.backoff(1, future)
	assert.Greater(t, d, 20*time.Second)
}

func TestBuildURL_EncodesQuery(t *testing.T) {
	c := noSleepClient("http://example.invalid/base/")
	u, err := c.buildURL("/endpoint", url.Values{"a": {"1 2"}})
	require.NoError(t, err)
	assert.Contains(t, u, "endpoint?a=1")
}
