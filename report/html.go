package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// snippetPolicy strips every HTML element from snippet text. Snippets come
// from scraped documents, so anything that looks like markup is noise at
// best and injected content at worst.
var snippetPolicy = bluemonday.StrictPolicy()

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Subject}}</title>
<style>
body { font-family: Georgia, serif; max-width: 54em; margin: 2em auto; color: #222; }
h1 { font-size: 1.4em; border-bottom: 2px solid #335; padding-bottom: 0.3em; }
.meta { color: #666; font-size: 0.9em; }
.finding { margin: 1.2em 0; padding: 0.8em; border-left: 3px solid #335; background: #f7f7f9; }
.finding .date { font-weight: bold; }
.finding .kw { color: #335; font-weight: bold; }
.finding .src { color: #666; font-size: 0.85em; }
.snippet { margin: 0.5em 0 0; font-style: italic; }
.none { color: #666; margin: 2em 0; }
</style>
</head>
<body>
<h1>{{.Subject}}</h1>
<p class="meta">Window {{.WindowStart.Format "2006-01-02"}} to {{.WindowEnd.Format "2006-01-02"}},
generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}.</p>
{{if .Rows}}
{{range .Rows}}
<div class="finding">
<span class="date">{{if .Date}}{{.Date}}{{else}}date unknown{{end}}</span>
— <span class="kw">{{.Keyword}}</span>
<span class="src">({{.Source}})</span><br>
<a href="{{.URL}}">{{if .Title}}{{.Title}}{{else}}{{.URL}}{{end}}</a>
<p class="snippet">{{.Snippet}}</p>
</div>
{{end}}
{{else}}
<p class="none">No new preschool-related findings in this window.</p>
{{end}}
</body>
</html>
`))

// RenderHTML renders the report to HTML. Snippets and titles are
// sanitized before templating; the template escapes everything again.
func RenderHTML(r *Report) ([]byte, error) {
	clean := *r
	clean.Rows = make([]Row, len(r.Rows))
	for i, row := range r.Rows {
		row.Snippet = snippetPolicy.Sanitize(row.Snippet)
		row.Title = snippetPolicy.Sanitize(row.Title)
		clean.Rows[i] = row
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, &clean); err != nil {
		return nil, fmt.Errorf("report: render html: %w", err)
	}
	return buf.Bytes(), nil
}
