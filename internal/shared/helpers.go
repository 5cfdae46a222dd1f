// Package shared provides common utility functions used across multiple
// packages in the runepkg codebase.
package shared

import (
	"fmt"
	"strings"
)

// ValidPackageName reports whether name is safe to use as a path segment
// and as a command argument. Names may not start with a dash so they can
// never be mistaken for a flag.
func ValidPackageName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed != name {
		return false
	}
	if name == "." || name == ".." || strings.HasPrefix(name, "-") {
		return false
	}
	return !strings.ContainsAny(name, "/\\ \t\n\x00")
}

// StripVersionConstraint drops a trailing version constraint such as
// ">=1.2" or "=3" from a dependency declaration.
func StripVersionConstraint(value string) string {
	trimmed := strings.TrimSpace(value)
	if idx := strings.IndexAny(trimmed, "<>="); idx != -1 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// UniqueStrings drops blanks and duplicates, keeping first-seen order.
func UniqueStrings(values []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}

// ExitStatusError describes a process that ran but exited non-zero.
func ExitStatusError(argv0 string, status int) error {
	return fmt.Errorf("%s exited with status %d", argv0, status)
}
