package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact filenames within the output directory.
const (
	HTMLFileName = "last_report.html"
	CSVFileName  = "report.csv"
)

// SaveArtifacts renders and writes the HTML and CSV artifacts into dir.
// Files are written atomically (write .tmp then rename) so a crash never
// leaves a partial report behind. Returns the HTML bytes for reuse by
// delivery.
func SaveArtifacts(dir string, r *Report) ([]byte, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: mkdir %s: %w", dir, err)
	}

	html, err := RenderHTML(r)
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(filepath.Join(dir, HTMLFileName), html); err != nil {
		return nil, err
	}

	var csvBuf bytes.Buffer
	if err := WriteCSV(&csvBuf, r.Rows); err != nil {
		return nil, err
	}
	if err := writeAtomic(filepath.Join(dir, CSVFileName), csvBuf.Bytes()); err != nil {
		return nil, err
	}

	return html, nil
}

func writeAtomic(target string, data []byte) error {
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("report: write tmp: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("report: rename: %w", err)
	}
	return nil
}
