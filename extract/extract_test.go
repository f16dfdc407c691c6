package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

// WHAT: Content-Type header wins over URL extension.
// WHY: servers frequently serve PDFs from extensionless handler URLs
// (e.g. DisplayFile.aspx?id=...), so the header must be authoritative.
func TestDetect_ContentTypeWins(t *testing.T) {
	got := Detect("application/pdf", "https://example.org/DisplayFile.aspx?id=42")
	if got != FormatPDF {
		t.Fatalf("Detect = %q, want %q", got, FormatPDF)
	}
}

// WHAT: generic content types fall back to the URL path extension.
func TestDetect_ExtensionFallback(t *testing.T) {
	cases := []struct {
		url  string
		want Format
	}{
		{"https://example.org/minutes.pdf", FormatPDF},
		{"https://example.org/agenda.DOCX", FormatDocx},
		{"https://example.org/board.html?x=1", FormatHTML},
		{"https://example.org/notes.txt", FormatText},
		{"https://example.org/download", FormatUnknown},
	}
	for _, c := range cases {
		if got := Detect("application/octet-stream", c.url); got != c.want {
			t.Errorf("Detect(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

// WHAT: query strings do not confuse extension detection.
func TestDetect_QueryStringIgnored(t *testing.T) {
	got := Detect("", "https://example.org/minutes.pdf?session=abc.html")
	if got != FormatPDF {
		t.Fatalf("Detect = %q, want %q", got, FormatPDF)
	}
}

// WHAT: unknown formats produce an empty Result, not an error.
// WHY: one unrecognised attachment must not abort a whole run.
func TestFromBytes_UnknownIsEmptyNotError(t *testing.T) {
	res, err := FromBytes([]byte{0x00, 0x01, 0x02}, FormatUnknown)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if res.Text != "" || res.Title != "" {
		t.Fatalf("want empty result, got %+v", res)
	}
}

// WHAT: plain text passes through untouched.
func TestFromBytes_PlainText(t *testing.T) {
	res, err := FromBytes([]byte("Preschool enrollment opens May 1."), FormatText)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if res.Text != "Preschool enrollment opens May 1." {
		t.Fatalf("Text = %q", res.Text)
	}
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// WHAT: DOCX paragraphs come out one per line, text runs joined.
func TestExtractDocx_Paragraphs(t *testing.T) {
	data := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Board of Education</w:t></w:r></w:p>
    <w:p><w:r><w:t>Regular Meeting </w:t></w:r><w:r><w:t>June 10, 2025</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := extractDocx(data)
	if err != nil {
		t.Fatalf("extractDocx: %v", err)
	}
	want := "Board of Education\nRegular Meeting June 10, 2025"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

// WHAT: character data outside <w:t> runs is ignored.
// WHY: document.xml carries formatting metadata between runs that must
// not leak into extracted text.
func TestExtractDocx_OnlyTextRuns(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="x"><w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Agenda</w:t></w:r></w:p>
</w:body></w:document>`)

	text, err := extractDocx(data)
	if err != nil {
		t.Fatalf("extractDocx: %v", err)
	}
	if text != "Agenda" {
		t.Fatalf("text = %q, want %q", text, "Agenda")
	}
}

// WHAT: a ZIP with no word/document.xml is an error.
func TestExtractDocx_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("other.txt")
	w.Write([]byte("nope"))
	zw.Close()

	if _, err := extractDocx(buf.Bytes()); err == nil {
		t.Fatal("want error for archive without document.xml")
	}
}

// WHAT: HTML extraction returns the <title> and visible block text,
// skipping script, style, nav and hidden elements.
func TestExtractHTML_VisibleTextOnly(t *testing.T) {
	page := `<html><head><title>June Agenda</title>
<style>body { color: red }</style></head>
<body>
<nav>Home | About</nav>
<h1>Board Meeting</h1>
<p>Preschool tuition discussion.</p>
<p style="display:none">hidden tracking text</p>
<script>var x = "preschool";</script>
<footer>District Office</footer>
</body></html>`

	title, text, err := extractHTML([]byte(page))
	if err != nil {
		t.Fatalf("extractHTML: %v", err)
	}
	if title != "June Agenda" {
		t.Fatalf("title = %q", title)
	}
	for _, want := range []string{"Board Meeting", "Preschool tuition discussion."} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q: %q", want, text)
		}
	}
	for _, banned := range []string{"hidden tracking", "var x", "color: red", "Home |", "District Office"} {
		if strings.Contains(text, banned) {
			t.Errorf("text leaked %q: %q", banned, text)
		}
	}
}

// WHAT: block elements become separate lines.
// WHY: sentence segmentation treats line breaks as boundaries, so two
// adjacent <p> elements must not fuse into one sentence.
func TestExtractHTML_BlocksOnSeparateLines(t *testing.T) {
	_, text, err := extractHTML([]byte(`<body><p>First block</p><p>Second block</p></body>`))
	if err != nil {
		t.Fatalf("extractHTML: %v", err)
	}
	if text != "First block\nSecond block" {
		t.Fatalf("text = %q", text)
	}
}

// WHAT: pages without block elements fall back to whole-document text.
func TestExtractHTML_FallbackWholeText(t *testing.T) {
	_, text, err := extractHTML([]byte(`<body><div>Just a div with enrollment info</div></body>`))
	if err != nil {
		t.Fatalf("extractHTML: %v", err)
	}
	if !strings.Contains(text, "enrollment info") {
		t.Fatalf("text = %q", text)
	}
}

// WHAT: Tj and TJ show-text operators yield their string literals.
func TestExtractTextFromStream_ShowText(t *testing.T) {
	stream := []byte("BT\n(Regular Meeting) Tj\n[(June) -200 (10, 2025)] TJ\nET\n")
	got := extractTextFromStream(stream)
	if !strings.Contains(got, "Regular Meeting") {
		t.Errorf("missing Tj text: %q", got)
	}
	if !strings.Contains(got, "June") || !strings.Contains(got, "10, 2025") {
		t.Errorf("missing TJ text: %q", got)
	}
}

// WHAT: T* and ' operators produce line breaks between text runs.
func TestExtractTextFromStream_LineBreaks(t *testing.T) {
	stream := []byte("(First line) Tj\nT*\n(Second line) '\n")
	got := extractTextFromStream(stream)
	if !strings.Contains(got, "First line\n") {
		t.Fatalf("want newline after T*: %q", got)
	}
	if !strings.Contains(got, "Second line") {
		t.Fatalf("missing ' text: %q", got)
	}
}

// WHAT: PDF string escapes decode, including octal sequences.
func TestDecodePDFString_Escapes(t *testing.T) {
	got := decodePDFString([]byte(`a\(b\)c\\d\040e`))
	if got != `a(b)c\d e` {
		t.Fatalf("decodePDFString = %q", got)
	}
}

// WHAT: cleanPDFText collapses space runs but keeps line breaks.
func TestCleanPDFText_KeepsNewlines(t *testing.T) {
	got := cleanPDFText("Board   of\t Education\nJune  2025")
	if got != "Board of Education\nJune 2025" {
		t.Fatalf("cleanPDFText = %q", got)
	}
}
