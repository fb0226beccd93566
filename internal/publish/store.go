// Package publish writes rendered digests to disk and commits them to
// the configured git repository.
package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DigestFilename derives the dated digest filename. Re-running on the
// same day targets the same file, replacing the earlier digest.
func DigestFilename(day time.Time) string {
	return day.Format("20060102") + ".md"
}

// CSVFilename derives the dated CSV export filename.
func CSVFilename(day time.Time) string {
	return "news_" + day.Format("20060102") + ".csv"
}

// Save overwrites path with text, creating parent directories as
// needed.
func Save(text, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
