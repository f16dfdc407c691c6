package discover

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FetchPage retrieves the HTML of one portal page. Implemented by the
// fetch layer; a browser-rendering implementation can be swapped in for
// script-heavy portals.
type FetchPage func(ctx context.Context, url string) ([]byte, error)

// BoardDocs crawls a hosted BoardDocs portal breadth-first from its public
// entry page, collecting attachment PDFs. The crawl is deliberately
// shallow: hosted portals link every meeting from the first few pages.
type BoardDocs struct {
	// Fetch retrieves page HTML. Required.
	Fetch FetchPage
	// MaxPages bounds the BFS frontier. Default: 8.
	MaxPages int
	// MaxFiles bounds collected attachments. Default: 50.
	MaxFiles int

	Logger *slog.Logger
}

func (b *BoardDocs) defaults() {
	if b.MaxPages <= 0 {
		b.MaxPages = 8
	}
	if b.MaxFiles <= 0 {
		b.MaxFiles = 50
	}
	if b.Logger == nil {
		b.Logger = slog.Default()
	}
}

// Crawl walks the portal from publicURL and returns the attachment PDFs
// found. Per-page fetch or parse failures are logged and skipped; only a
// bad entry URL is an error.
func (b *BoardDocs) Crawl(ctx context.Context, publicURL string) ([]Doc, error) {
	b.defaults()

	entry, err := url.Parse(publicURL)
	if err != nil {
		return nil, err
	}

	queue := []string{publicURL}
	visited := make(map[string]bool)
	seenFiles := make(map[string]bool)
	var out []Doc

	for len(queue) > 0 && len(visited) < b.MaxPages && len(out) < b.MaxFiles {
		pageURL := queue[0]
		queue = queue[1:]
		if visited[pageURL] {
			continue
		}
		visited[pageURL] = true

		html, err := b.Fetch(ctx, pageURL)
		if err != nil {
			b.Logger.Warn("boarddocs: page fetch failed", "url", pageURL, "error", err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
		if err != nil {
			b.Logger.Warn("boarddocs: page parse failed", "url", pageURL, "error", err)
			continue
		}

		base, err := url.Parse(pageURL)
		if err != nil {
			base = entry
		}

		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			abs := absolutize(base, sel.AttrOr("href", ""))
			if abs == "" {
				return
			}

			if isBoardDocsFile(abs) {
				if len(out) >= b.MaxFiles || seenFiles[abs] {
					return
				}
				seenFiles[abs] = true
				out = append(out, Doc{
					Title:  anchorTitle(sel, abs),
					URL:    abs,
					Source: SourceBoardDocs,
				})
				return
			}

			// Same-host pages feed the frontier until the page budget
			// is spent.
			u, err := url.Parse(abs)
			if err != nil || u.Host != entry.Host {
				return
			}
			if !visited[abs] && len(visited)+len(queue) < b.MaxPages {
				queue = append(queue, abs)
			}
		})
	}

	return out, nil
}

// isBoardDocsFile reports whether a URL is a portal attachment: a PDF
// served from a /files/ path.
func isBoardDocsFile(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	return strings.Contains(p, "/files/") && path.Ext(p) == ".pdf"
}
