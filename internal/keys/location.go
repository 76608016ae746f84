package keys

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// Dataset returns the canonical object key for an uploaded dataset file.
func Dataset(mapName, file string) string {
	ext := path.Ext(file)
	if ext == "" {
		ext = ".json"
	}
	return fmt.Sprintf("datasets/%s%s", sanitizeKey(mapName), strings.ToLower(ext))
}

// Snapshots returns the object key for an export of all counters taken at t.
func Snapshots(mapName string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("snapshots/%s/%s/%s.json",
		sanitizeKey(mapName),
		t.Format("2006-01-02"),
		t.Format("150405.000"),
	)
}
