// Package validation provides input validation functions for security-critical operations.
// These functions guard against path traversal in archive entries and content locations.
package validation

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Repository key validation:
// - Letters, digits, and separators (., _, -)
// - Must start with a letter or digit
// - Max 64 characters
var repositoryKeyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Entity identifiers end up in package names, FTP paths and SWORD Slug headers.
var entityIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,199}$`)

// MaxEntryNameLength is the maximum allowed length of an archive entry name.
const MaxEntryNameLength = 1024

// ValidateRepositoryKey validates a repository configuration key.
func ValidateRepositoryKey(key string) error {
	if key == "" {
		return fmt.Errorf("repository key cannot be empty")
	}

	if !repositoryKeyRegex.MatchString(key) {
		return fmt.Errorf("invalid repository key %q: must contain only letters, digits, and separators (., _, -)", key)
	}

	return nil
}

// ValidateEntityID validates a submission or deposit identifier.
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if strings.Contains(id, "..") {
		return fmt.Errorf("identifier contains path traversal sequence")
	}

	if !entityIDRegex.MatchString(id) {
		return fmt.Errorf("invalid identifier format %q", id)
	}

	return nil
}

// ValidateEntryName cleans an archive entry name and rejects names that would
// escape the archive root. Entry names always use forward slashes.
func ValidateEntryName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("entry name cannot be empty")
	}

	if len(name) > MaxEntryNameLength {
		return "", fmt.Errorf("entry name too long: %d chars (max %d)", len(name), MaxEntryNameLength)
	}

	if strings.ContainsAny(name, "\x00\t\n\r") {
		return "", fmt.Errorf("entry name contains control characters")
	}

	cleanName := path.Clean(strings.ReplaceAll(name, "\\", "/"))

	if cleanName == "." || cleanName == ".." || strings.HasPrefix(cleanName, "../") {
		return "", fmt.Errorf("path traversal not allowed")
	}

	if path.IsAbs(cleanName) {
		return "", fmt.Errorf("absolute paths not allowed")
	}

	return cleanName, nil
}

// ValidatePath sanitizes and validates a relative filesystem path.
// Returns the cleaned path or an error if the path is unsafe.
func ValidatePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	cleanPath := filepath.Clean(p)

	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal not allowed")
	}

	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("absolute paths not allowed")
	}

	return cleanPath, nil
}

// ValidatePathWithinRoot validates that a constructed path stays within the root directory.
// This provides defense-in-depth after filepath.Join operations.
func ValidatePathWithinRoot(rootDir, fullPath string) error {
	cleanRoot := filepath.Clean(rootDir)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator)) && cleanPath != cleanRoot {
		return fmt.Errorf("path escapes root directory")
	}

	return nil
}
