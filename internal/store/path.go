package store

import (
	"path/filepath"
	"strings"
)

// validID validates sessionId, taskId, and any other user-supplied path
// fragment. Only alphanumerics, dot, underscore, and hyphen are accepted;
// path separators, the id ".", and any id containing ".." are rejected
// outright.
func validID(id string) bool {
	if id == "" {
		return false
	}
	if id == "." || strings.Contains(id, "..") {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	if strings.Contains(id, "/") || strings.Contains(id, "\\") {
		return false
	}
	return true
}

// isPathWithin reports whether path is equal to base or a descendant of it,
// after cleaning both. This is the path-traversal defense applied to every
// derived file path before it is read or written.
func isPathWithin(path, base string) bool {
	cleanPath := filepath.Clean(path)
	cleanBase := filepath.Clean(base)

	if cleanPath == cleanBase {
		return true
	}
	if !strings.HasSuffix(cleanBase, string(filepath.Separator)) {
		cleanBase += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanBase)
}
