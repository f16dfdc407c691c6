// Package fetch implements polite HTTP document acquisition: retries with
// backoff, response size caps, per-request courtesy delay, robots.txt
// checks, and a headless-browser fallback for script-rendered portals.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Result contains the outcome of a fetch.
type Result struct {
	Body        []byte
	StatusCode  int
	ContentType string // from response header
	FinalURL    string // after redirects
}

// Config configures the fetcher.
type Config struct {
	Timeout  time.Duration // HTTP timeout. Default: 60s.
	MaxBytes int64         // Max response body size. Default: 10MB.
	// UserAgent sent with requests.
	UserAgent string
	// Attempts is how many times a URL is tried before giving up. Default: 3.
	Attempts int
	// Backoff is the base delay between attempts; attempt N waits N*Backoff.
	// Default: 1.5s.
	Backoff time.Duration
	// Delay is the courtesy pause before each request. Default: 2s.
	Delay time.Duration
	// Robots gates requests by robots.txt. Nil = no gating.
	Robots *Robots

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024 // 10MB
	}
	if c.UserAgent == "" {
		c.UserAgent = "boardwatch/1.0"
	}
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 1500 * time.Millisecond
	}
	if c.Delay < 0 {
		c.Delay = 0
	} else if c.Delay == 0 {
		c.Delay = 2 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Fetcher performs HTTP requests with retries and polite pacing.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Fetch retrieves a URL, retrying transient failures with linear backoff.
// A non-2xx terminal status returns the Result alongside the error so the
// caller can log the status code.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	if f.config.Robots != nil && !f.config.Robots.Allowed(ctx, url) {
		return nil, fmt.Errorf("fetch: %s disallowed by robots.txt", url)
	}

	var lastErr error
	for attempt := 1; attempt <= f.config.Attempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt) * f.config.Backoff
			f.config.Logger.Debug("fetch: retrying", "url", url, "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		if f.config.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.config.Delay):
			}
		}

		res, err := f.fetchOnce(ctx, url)
		if err == nil {
			return res, nil
		}
		lastErr = err

		// Client errors other than 429 will not improve with retries.
		if res != nil && res.StatusCode >= 400 && res.StatusCode < 500 && res.StatusCode != http.StatusTooManyRequests {
			return res, err
		}
	}
	return nil, fmt.Errorf("fetch: %s after %d attempts: %w", url, f.config.Attempts, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Result{StatusCode: resp.StatusCode}, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Result{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}
