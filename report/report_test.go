package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleReport() *Report {
	return &Report{
		Rows: []Row{
			{
				Date:    "2025-06-10",
				Source:  "district",
				Title:   "Regular Meeting Minutes",
				URL:     "https://district.example.org/minutes.pdf",
				Keyword: "preschool",
				Snippet: "The Board approved free Preschool starting this fall.",
			},
			{
				Source:  "boarddocs",
				URL:     "https://portal.example/files/agenda.pdf",
				Keyword: "pre-k",
				Snippet: "Pre-K lottery, details to follow.",
			},
		},
		WindowStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
	}
}

// WHAT: the HTML report carries every row's keyword, link and snippet.
func TestRenderHTML_Rows(t *testing.T) {
	html, err := RenderHTML(sampleReport())
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	s := string(html)
	for _, want := range []string{
		"preschool", "pre-k",
		"https://district.example.org/minutes.pdf",
		"The Board approved free Preschool starting this fall.",
		"date unknown", // row without an inferred date
	} {
		if !strings.Contains(s, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

// WHAT: markup inside scraped snippets never reaches the rendered report.
func TestRenderHTML_SanitizesSnippets(t *testing.T) {
	r := sampleReport()
	r.Rows[0].Snippet = `Preschool <script>alert(1)</script> expansion`

	html, err := RenderHTML(r)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(string(html), "alert(1)") {
		t.Fatal("script content leaked into report")
	}
	if !strings.Contains(string(html), "Preschool") {
		t.Fatal("sanitization removed legitimate text")
	}
}

// WHAT: an empty report renders the no-findings notice, not an error.
func TestRenderHTML_Empty(t *testing.T) {
	r := sampleReport()
	r.Rows = nil

	html, err := RenderHTML(r)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(string(html), "No new preschool-related findings") {
		t.Fatal("missing empty-report notice")
	}
}

// WHAT: CSV export has the stable header and one line per row, with
// commas inside snippets quoted away by the encoder.
func TestWriteCSV(t *testing.T) {
	r := sampleReport()
	r.Rows[0].Snippet = "Preschool, pre-k, and daycare were discussed."

	var buf bytes.Buffer
	if err := WriteCSV(&buf, r.Rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if strings.Join(records[0], ",") != "date,source,url,keyword,snippet" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][4] != "Preschool, pre-k, and daycare were discussed." {
		t.Errorf("snippet = %q", records[1][4])
	}
	if records[2][0] != "" {
		t.Errorf("undated row date = %q, want empty", records[2][0])
	}
}

// WHAT: an empty row set still yields a header-only CSV.
func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "date,source,url,keyword,snippet" {
		t.Errorf("csv = %q", buf.String())
	}
}

// WHAT: subject lines distinguish backfill runs from monthly runs.
func TestSubject(t *testing.T) {
	r := sampleReport()
	if got := r.Subject(); !strings.Contains(got, "June 2025") {
		t.Errorf("monthly subject = %q", got)
	}

	r.Backfill = true
	r.WindowStart = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	got := r.Subject()
	if !strings.Contains(got, "backfill") || !strings.Contains(got, "2021-01-01") {
		t.Errorf("backfill subject = %q", got)
	}
}

// WHAT: the plain-text alternative is derived from the HTML and keeps the
// report content.
func TestPlainText(t *testing.T) {
	r := sampleReport()
	html, err := RenderHTML(r)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}

	text := PlainText(r, html)
	if strings.Contains(text, "<div") || strings.Contains(text, "<html") {
		t.Errorf("plain text still contains markup: %q", text)
	}
	if !strings.Contains(text, "preschool") && !strings.Contains(text, "Preschool") {
		t.Errorf("plain text lost content: %q", text)
	}
}

// WHAT: SaveArtifacts writes both files and leaves no .tmp remnants.
func TestSaveArtifacts(t *testing.T) {
	dir := t.TempDir()
	html, err := SaveArtifacts(dir, sampleReport())
	if err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}
	if len(html) == 0 {
		t.Fatal("empty html returned")
	}

	for _, name := range []string{HTMLFileName, CSVFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

// WHAT: mail config completeness gates delivery attempts.
func TestMailConfig_Complete(t *testing.T) {
	c := MailConfig{}
	if c.Complete() {
		t.Error("empty config reported complete")
	}
	c = MailConfig{Host: "smtp.example.org", From: "monitor@example.org", To: []string{"board@example.org"}}
	if !c.Complete() {
		t.Error("full config reported incomplete")
	}
}
