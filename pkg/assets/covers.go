package assets

import (
	"os"
	"path/filepath"
	"strings"
)

var coverExtensions = []string{".jpg", ".jpeg", ".png", ".JPG", ".JPEG", ".PNG"}

// FindCover locates a book's cover image inside dir by title. It first
// probes for an exact "<title><ext>" file, then falls back to a
// case-insensitive substring match over every file in the directory.
// Returns the bare filename, or "" when nothing matches.
func FindCover(dir, title string) string {
	if title == "" || dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); err != nil {
		return ""
	}

	for _, ext := range coverExtensions {
		candidate := filepath.Join(dir, title+ext)
		if _, err := os.Stat(candidate); err == nil {
			return title + ext
		}
	}

	normalized := strings.ToLower(strings.TrimSpace(title))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		if normalized == stem || strings.Contains(stem, normalized) || strings.Contains(normalized, stem) {
			return name
		}
	}

	return ""
}
