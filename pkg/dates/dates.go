// Package dates parses the timestamp formats that appear in the
// historical spreadsheet exports. The data mixes ISO and European
// day-first styles, with and without time components.
package dates

import "time"

// Layouts, in the order they are tried. Longer layouts come before
// their prefixes so "2006-01-02 15:04:05" is not half-parsed by
// "2006-01-02".
var Layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02/01/2006 15:04",
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
}

// Parse tries RFC 3339 first, for values that round-tripped through
// JSON, then each spreadsheet layout.
func Parse(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
