package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds topology names accepted by the stores.
const maxNameLength = 128

// nameRegex matches topology names: letters, digits, dot, dash and underscore,
// starting with a letter or digit.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName validates a saved-topology name.
// Names double as file names and database keys, so the rules are conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Only letters, digits, '.', '-' and '_'
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "topology name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "topology name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "topology name contains invalid control characters")
		}
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "topology name cannot contain %q", "..")
	}

	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid topology name: %q", name)
	}

	return nil
}

// ValidatePath validates a topology file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
