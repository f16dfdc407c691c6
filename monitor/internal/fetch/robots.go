package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// Robots caches per-host robots.txt rules and answers path queries.
// A host whose robots.txt cannot be fetched or parsed is treated as
// fully allowed.
type Robots struct {
	userAgent string
	client    *http.Client
	logger    *slog.Logger

	mu    sync.Mutex
	hosts map[string]*robotstxt.Group
}

// NewRobots creates a robots.txt cache for the given user agent.
func NewRobots(userAgent string, logger *slog.Logger) *Robots {
	if logger == nil {
		logger = slog.Default()
	}
	return &Robots{
		userAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
		hosts:     make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether rawURL may be fetched under the host's
// robots.txt. Unparseable URLs are allowed; the fetch itself will fail
// with a better error.
func (r *Robots) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	group := r.group(ctx, u)
	if group == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

func (r *Robots) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.hosts[u.Host]; ok {
		return g
	}

	g := r.fetchGroup(ctx, u)
	r.hosts[u.Host] = g
	return g
}

// fetchGroup retrieves and parses robots.txt for the host. Returns nil
// (allow everything) on any failure; the nil is cached so a dead host is
// only probed once per run.
func (r *Robots) fetchGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("robots: fetch failed", "host", u.Host, "error", err)
		return nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, data)
	if err != nil {
		r.logger.Debug("robots: parse failed", "host", u.Host, "error", err)
		return nil
	}
	return robots.FindGroup(r.userAgent)
}
