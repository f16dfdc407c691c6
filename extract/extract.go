// Package extract turns fetched document bytes into plain text.
//
// Supported formats:
//   - PDF   — pdfcpu cross-reference parsing + content stream decoding
//   - DOCX  — archive/zip → word/document.xml
//   - HTML  — visible text, boilerplate and hidden elements stripped
//   - plain — passthrough
//
// Callers never branch on format beyond Detect; unknown formats yield
// empty text and no error.
package extract

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Format identifies a document type.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatDocx    Format = "docx"
	FormatHTML    Format = "html"
	FormatText    Format = "text"
	FormatUnknown Format = "unknown"
)

// Result is the outcome of extracting one document.
type Result struct {
	Format Format
	Title  string // document-declared title, may be empty
	Text   string // raw extracted text
}

// Detect resolves the document format from the Content-Type header and,
// when that is generic or absent, the URL path extension.
func Detect(contentType, rawURL string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return FormatPDF
	case strings.Contains(ct, "wordprocessingml"):
		return FormatDocx
	case strings.Contains(ct, "text/html"):
		return FormatHTML
	case strings.Contains(ct, "text/plain"):
		return FormatText
	}

	ext := urlExt(rawURL)
	switch ext {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDocx
	case ".htm", ".html":
		return FormatHTML
	case ".txt":
		return FormatText
	}
	return FormatUnknown
}

// FromBytes extracts text from document bytes of the given format.
// FormatUnknown returns an empty Result without error.
func FromBytes(data []byte, format Format) (*Result, error) {
	switch format {
	case FormatPDF:
		title, text, err := extractPDF(data)
		if err != nil {
			return nil, fmt.Errorf("pdf: %w", err)
		}
		return &Result{Format: format, Title: title, Text: text}, nil
	case FormatDocx:
		text, err := extractDocx(data)
		if err != nil {
			return nil, fmt.Errorf("docx: %w", err)
		}
		return &Result{Format: format, Text: text}, nil
	case FormatHTML:
		title, text, err := extractHTML(data)
		if err != nil {
			return nil, fmt.Errorf("html: %w", err)
		}
		return &Result{Format: format, Title: title, Text: text}, nil
	case FormatText:
		return &Result{Format: format, Text: string(data)}, nil
	default:
		return &Result{Format: FormatUnknown}, nil
	}
}

func urlExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(path.Ext(rawURL))
	}
	return strings.ToLower(path.Ext(u.Path))
}
