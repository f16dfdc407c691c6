package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// csvHeader is the stable column order of the CSV export.
var csvHeader = []string{"date", "source", "url", "keyword", "snippet"}

// WriteCSV writes the report rows as CSV, header first. An empty report
// still produces the header so consumers always see a valid file.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("report: write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Date, r.Source, r.URL, r.Keyword, r.Snippet}); err != nil {
			return fmt.Errorf("report: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
