package importer

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// sheet is the first worksheet of an xlsx file, with cleaned headers.
// Cells are kept as the strings excelize produced; normalization happens
// per field at import time.
type sheet struct {
	headers []string
	rows    [][]string
}

func readSheet(path string) (*sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(rows) == 0 {
		return &sheet{}, nil
	}

	s := &sheet{rows: rows[1:]}
	for _, h := range rows[0] {
		s.headers = append(s.headers, cleanHeader(h))
	}
	return s, nil
}

// cleanHeader strips tabs and surrounding whitespace from a column
// name. The exports were assembled by hand and some headers carry
// embedded tabs.
func cleanHeader(h string) string {
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, "\t", "")
}

// col returns the index of the named column, or -1.
func (s *sheet) col(name string) int {
	for i, h := range s.headers {
		if h == name {
			return i
		}
	}
	return -1
}

// cell returns the named column of a row, or "" when the row is ragged
// or the column is missing.
func (s *sheet) cell(row []string, name string) string {
	i := s.col(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
