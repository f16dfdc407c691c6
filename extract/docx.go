package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// extractDocx parses .docx bytes by reading word/document.xml from the ZIP
// archive. Paragraphs become lines; everything else is ignored.
func extractDocx(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var out strings.Builder
	var current strings.Builder
	var inParagraph bool
	var inText bool

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					current.WriteByte(' ')
				}
			case "br", "cr":
				if inParagraph {
					current.WriteByte('\n')
				}
			}

		case xml.CharData:
			// Only <w:t> runs carry document text; other character data
			// inside a paragraph is formatting metadata.
			if inText {
				current.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					inParagraph = false
					if text := strings.TrimSpace(current.String()); text != "" {
						if out.Len() > 0 {
							out.WriteByte('\n')
						}
						out.WriteString(text)
					}
				}
			}
		}
	}

	return out.String(), nil
}
