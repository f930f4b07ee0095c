package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// RunPath builds the artifact directory path for one run, relative to the
// storage base dir. Format: runs/2026-08-30_1530_mock-story_82f06b15.
func RunPath(runID, outputName string) string {
	timestamp := time.Now().Format("2006-01-02_1504")
	shortID := runID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	name := sanitizeForFilename(outputName, 30)
	if name == "" {
		return filepath.Join("runs", fmt.Sprintf("%s_%s", timestamp, shortID))
	}
	return filepath.Join("runs", fmt.Sprintf("%s_%s_%s", timestamp, name, shortID))
}

// sanitizeForFilename converts a string to a safe filename component.
func sanitizeForFilename(s string, maxLen int) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "-_")
	if len(out) > maxLen {
		out = strings.Trim(out[:maxLen], "-_")
	}
	return out
}
