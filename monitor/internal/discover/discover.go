// Package discover finds candidate board documents: anchor scraping on
// district pages and a shallow crawl of the hosted BoardDocs portal.
package discover

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Source identifies where a document reference was discovered.
const (
	SourceDistrict  = "district"
	SourceBoardDocs = "boarddocs"
)

// Doc is one discovered document reference.
type Doc struct {
	Title  string
	URL    string
	Source string
}

// docExtensions are path extensions treated as board documents.
var docExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".htm":  true,
	".html": true,
}

// District extracts document links from a district page: anchors pointing
// at DisplayFile.aspx handlers or files with document extensions. URLs are
// absolutized against pageURL and deduplicated in document order.
func District(pageHTML []byte, pageURL string) ([]Doc, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, err
	}

	var out []Doc
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs := absolutize(base, href)
		if abs == "" || !isDocumentLink(abs) {
			return
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, Doc{
			Title:  anchorTitle(sel, abs),
			URL:    abs,
			Source: SourceDistrict,
		})
	})

	return out, nil
}

// isDocumentLink reports whether a URL points at a board document: a
// DisplayFile.aspx handler or a file with a document extension.
func isDocumentLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.Contains(strings.ToLower(u.Path), "displayfile.aspx") {
		return true
	}
	return docExtensions[strings.ToLower(path.Ext(u.Path))]
}

// absolutize resolves href against base and keeps only http(s) results.
// Fragments are stripped so #section variants collapse to one URL.
func absolutize(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// anchorTitle prefers the anchor text, falling back to the URL filename.
func anchorTitle(sel *goquery.Selection, absURL string) string {
	title := strings.Join(strings.Fields(sel.Text()), " ")
	if title != "" {
		return title
	}
	if u, err := url.Parse(absURL); err == nil {
		if name := path.Base(u.Path); name != "." && name != "/" {
			return name
		}
	}
	return absURL
}
