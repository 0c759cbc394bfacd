package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/booknest/booknest/pkg/dates"
)

// normalize strips tabs, collapses doubled spaces, and trims. The
// spreadsheet exports are full of stray whitespace.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\t", "")
	s = strings.ReplaceAll(s, "  ", " ")
	return strings.TrimSpace(s)
}

// nullable returns nil for empty cells and for the literal string
// "NULL", which the exports use interchangeably with an empty cell.
func nullable(s string) *string {
	s = normalize(s)
	if s == "" || s == "NULL" {
		return nil
	}
	return &s
}

// nullableInt parses an integer cell the same way. Excel sometimes
// renders integer cells as floats, so "1905.0" still parses.
func nullableInt(s string) *int {
	v := nullable(s)
	if v == nil {
		return nil
	}
	if n, err := strconv.Atoi(*v); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(*v, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

func intCell(s string) (int, bool) {
	n := nullableInt(s)
	if n == nil {
		return 0, false
	}
	return *n, true
}

// parseDate normalizes a timestamp cell and tries the known layouts.
func parseDate(s string) (time.Time, bool) {
	v := nullable(s)
	if v == nil {
		return time.Time{}, false
	}
	return dates.Parse(*v)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
