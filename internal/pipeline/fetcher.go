package pipeline

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ppiankov/lightship/internal/cache"
	"github.com/ppiankov/lightship/internal/logging"
	"github.com/ppiankov/lightship/internal/model"
	"github.com/ppiankov/lightship/internal/util"
)

// ErrDisallowedByRobots is returned when robots.txt forbids fetching an export
var ErrDisallowedByRobots = errors.New("disallowed by robots.txt")

// ErrBodyTooLarge is returned when an export exceeds the configured size limit.
// A truncated inventory would silently under-report emissions.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = time.Sleep

const fetchAttempts = 3

// RateLimiter delays requests per host
type RateLimiter interface {
	WaitWithDelay(ctx context.Context, rawURL string, additionalDelay time.Duration) error
}

// Fetcher downloads remote inventory exports
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    RateLimiter
	cache      cache.Cache
	log        *logging.Logger
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, insecureTLS bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
	}
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // opt-in, for self-signed yard servers
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		log:       logging.Nop(),
	}
}

// WithRobots enables robots.txt checks
func (f *Fetcher) WithRobots(r *util.RobotsChecker) *Fetcher {
	f.robots = r
	return f
}

// WithLimiter enables per-host rate limiting
func (f *Fetcher) WithLimiter(l RateLimiter) *Fetcher {
	f.limiter = l
	return f
}

// WithCache enables caching of successful fetches
func (f *Fetcher) WithCache(c cache.Cache) *Fetcher {
	f.cache = c
	return f
}

// WithLogger sets the logger
func (f *Fetcher) WithLogger(l *logging.Logger) *Fetcher {
	f.log = logging.OrNop(l)
	return f
}

// FetchResult contains the fetched export and metadata
type FetchResult struct {
	Body     []byte          `json:"body"`
	Meta     model.FetchMeta `json:"meta"`
	FinalURL string          `json:"final_url"`
	Name     string          `json:"name"` // Last path segment, used for adapter selection and the shipyard
}

// FetchWithRetry fetches with up to three attempts, backing off 1s then 2s.
// Only server errors, 429 and connection failures are retried.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			f.log.Debug("retrying fetch", "url", rawURL, "attempt", attempt+1, "backoff", backoff, "error", lastErr)
			fetchSleepFunc(backoff)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		if !isRetryableFetchError(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", fetchAttempts, lastErr)
}

// Fetch retrieves a single export, consulting the cache, robots.txt and the limiter first
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("create request: unsupported scheme %q", parsed.Scheme)
	}

	key := cache.FetchKey(rawURL)
	if f.cache != nil {
		if data, ok := f.cache.Get(key); ok {
			var cached FetchResult
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.Meta.FromCache = true
				f.log.Debug("fetch cache hit", "url", rawURL)
				return &cached, nil
			}
		}
	}

	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		switch {
		case err != nil:
			f.log.Warn("robots.txt check failed, proceeding", "url", rawURL, "error", err)
		case !allowed:
			return nil, fmt.Errorf("%w: %s", ErrDisallowedByRobots, rawURL)
		default:
			crawlDelay = delay
		}
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/csv,text/tab-separated-values,text/plain,text/html;q=0.9,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}
	for _, k := range []string{"Content-Length", "Content-Disposition", "Server", "Cache-Control"} {
		if v := resp.Header.Get(k); v != "" {
			meta.Headers[k] = v
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := f.readBody(resp.Body)
	if err != nil {
		return nil, err
	}

	finalURL := resp.Request.URL.String()
	result := &FetchResult{
		Body:     body,
		Meta:     meta,
		FinalURL: finalURL,
		Name:     sourceName(resp.Request.URL),
	}

	if f.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := f.cache.Set(key, data, 0); err != nil {
				f.log.Warn("fetch cache write failed", "url", rawURL, "error", err)
			}
		}
	}
	return result, nil
}

func (f *Fetcher) readBody(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	}

	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.maxBytes)
	}
	return body, nil
}

// isRetryableFetchError reports whether a fetch error is worth retrying
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if strings.Contains(msg, "unexpected status: ") {
		for _, code := range []string{"500", "502", "503", "504", "429"} {
			if strings.Contains(msg, "unexpected status: "+code) {
				return true
			}
		}
		return false
	}

	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "i/o timeout") ||
		(strings.HasPrefix(msg, "fetch:") && strings.Contains(msg, "EOF"))
}

// sourceName returns the last path segment of u, or its host for bare URLs
func sourceName(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return u.Hostname()
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}
