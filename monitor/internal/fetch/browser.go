package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Renderer drives a headless Chrome for pages whose content is assembled
// by scripts after load, such as hosted meeting portals that serve an
// empty HTML shell. Chrome is launched lazily on first use.
type Renderer struct {
	logger *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewRenderer creates a Renderer. Chrome starts on the first Render call.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// Render navigates to the URL in a stealth tab, waits for the page to
// settle, and returns the serialised DOM.
func (r *Renderer) Render(ctx context.Context, pageURL string, settle time.Duration) (string, error) {
	b, err := r.ensureBrowser()
	if err != nil {
		return "", err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return "", fmt.Errorf("render: create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return "", fmt.Errorf("render: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		r.logger.Warn("render: wait load timeout", "url", pageURL, "error", err)
	}

	// Let client-side rendering finish.
	if settle > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(settle):
		}
	}

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("render: get DOM: %w", err)
	}
	return res.Value.Str(), nil
}

func (r *Renderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true)
	l = l.Set("disable-blink-features", "AutomationControlled")

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("render: launch chrome: %w", err)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("render: connect: %w", err)
	}

	r.browser = b
	r.lnch = l
	r.logger.Info("render: launched headless chrome")
	return b, nil
}

// Close shuts down Chrome if it was started.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		r.browser.Close()
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
	return nil
}
