package store

import "path/filepath"

// summariesDir is the subdirectory holding append-only summary artifacts.
const summariesDir = ".summaries"

// summaryPath resolves a summary's filename to its path under a session
// directory's .summaries/ subdirectory. Summaries are plain text or
// markdown; a new write atomically replaces the file in place rather than
// appending, so "append-only" describes the set of filenames accumulated
// over a session's life, not in-place mutation of one file.
func summaryPath(sessionDir, filename string) string {
	return filepath.Join(sessionDir, summariesDir, filename)
}
