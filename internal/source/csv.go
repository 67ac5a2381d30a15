// Package source provides the external read-only data sources: local CSV
// files and Google Sheets tabs.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Barry1701/AutoAgent/internal/tabular"
)

// ErrNotFound indicates a configured source path does not exist.
var ErrNotFound = errors.New("source not found")

// ErrUnavailable indicates a sheet tab could not be read.
var ErrUnavailable = errors.New("source unavailable")

// ReadCSV loads a CSV file into a table. The first row is the header
// (trimmed); every cell is kept as a string, and short rows are padded
// with empty strings so downstream code never branches on missing cells.
func ReadCSV(path string) (tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tabular.Table{}, fmt.Errorf("csv %s: %w", path, ErrNotFound)
		}
		return tabular.Table{}, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return tabular.Table{}, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return tabular.Table{Name: filepath.Base(path)}, nil
	}

	headers := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		headers = append(headers, tabular.CleanCell(h))
	}

	rows := make([]tabular.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(tabular.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = tabular.CleanCell(rec[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return tabular.Table{
		Name:    filepath.Base(path),
		Columns: headers,
		Rows:    rows,
	}, nil
}
