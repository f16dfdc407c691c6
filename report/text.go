package report

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// PlainText derives the text/plain alternative of the report from its
// rendered HTML. If conversion fails or comes back empty, it falls back
// to a minimal line-per-row rendering so mail clients always get a body.
func PlainText(r *Report, html []byte) string {
	result, err := mdConverter.ConvertString(string(html))
	if err == nil && strings.TrimSpace(result) != "" {
		return strings.TrimSpace(result)
	}

	var sb strings.Builder
	sb.WriteString(r.Subject())
	sb.WriteString("\n\n")
	if len(r.Rows) == 0 {
		sb.WriteString("No new preschool-related findings in this window.\n")
		return sb.String()
	}
	for _, row := range r.Rows {
		date := row.Date
		if date == "" {
			date = "date unknown"
		}
		sb.WriteString(date)
		sb.WriteString("  [")
		sb.WriteString(row.Keyword)
		sb.WriteString("]  ")
		sb.WriteString(row.URL)
		sb.WriteString("\n    ")
		sb.WriteString(row.Snippet)
		sb.WriteString("\n")
	}
	return sb.String()
}
