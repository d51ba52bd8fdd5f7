package export

import (
	"strings"
	"time"
)

const timestampLayout = "20060102_150405"

// sanitizeName case-folds a course name and collapses every run of
// non-alphanumeric characters into a single underscore, so the result is
// safe on any filesystem and deterministic for a given name.
func sanitizeName(name string) string {
	var b strings.Builder
	lastFiller := true // swallow leading fillers
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastFiller = false
			continue
		}
		if !lastFiller {
			b.WriteByte('_')
			lastFiller = true
		}
	}
	out := strings.TrimSuffix(b.String(), "_")
	if out == "" {
		return "course"
	}
	return out
}

// SingleFilename names a one-course CSV export.
func SingleFilename(courseName string, now time.Time) string {
	return sanitizeName(courseName) + "_gradebook_" + now.Format(timestampLayout) + ".csv"
}

// BatchFilename names a bulk export archive, mirroring the server's own
// convention for the zip it produces.
func BatchFilename(now time.Time) string {
	return "netacad_gradebooks_" + now.Format(timestampLayout) + ".zip"
}
