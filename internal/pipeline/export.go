package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pnadel/llmsurfer/internal/model"
)

// Export writes the record set to a spreadsheet named
// <query>_<maxResults>_<MM-DD-YYYY>_results.xlsx under dir. Columns are
// the union of record fields in first-seen order; rows keep record
// order. Returns the written path, or "" when there is nothing to
// export.
func Export(records *model.RecordSet, dir, query string, maxResults int, now time.Time) (string, error) {
	if records.Len() == 0 {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	const sheet = "Sheet1"

	cols := columnOrder(records)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for i, title := range records.Titles() {
		rec := records.Get(title)
		row := make([]any, len(cols))
		for j, col := range cols {
			if v, ok := rec.Get(col); ok {
				row[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i, err)
		}
	}

	name := fmt.Sprintf("%s_%d_%s_results.xlsx", sanitizeFileName(query), maxResults, now.Format("01-02-2006"))
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

// columnOrder returns the union of all record field keys in first-seen
// order across records.
func columnOrder(records *model.RecordSet) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, title := range records.Titles() {
		for _, f := range records.Get(title).Fields() {
			if !seen[f.Key] {
				seen[f.Key] = true
				cols = append(cols, f.Key)
			}
		}
	}
	return cols
}

// sanitizeFileName keeps queries with path separators from escaping the
// export directory.
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '-'
		default:
			return r
		}
	}, s)
}
