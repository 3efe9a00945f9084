package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateTrackName validates a track name for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No whitespace
//   - Maximum length of 64 characters
func ValidateTrackName(name string) error {
	if name == "" {
		return New(ErrCodeConfiguration, "track name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeConfiguration, "track name too long (max 64 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeConfiguration, "track name contains control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeConfiguration, "track name cannot contain whitespace: %q", name)
		}
	}

	return nil
}

// tagRegex matches component type tags: an upper-case letter followed by
// letters and digits (PascalCase, the convention for component names).
var tagRegex = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

// ValidateTag validates a component type tag.
// Tags form an open set - any PascalCase identifier is accepted, whether or
// not the slot registry knows it.
func ValidateTag(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidTag, "type tag cannot be empty")
	}

	if len(tag) > 128 {
		return New(ErrCodeInvalidTag, "type tag too long (max 128 characters)")
	}

	if !tagRegex.MatchString(tag) {
		return New(ErrCodeInvalidTag, "type tag must be a PascalCase identifier: %q", tag)
	}

	return nil
}

// propKeyRegex matches property keys: snake_case or camelCase identifiers.
var propKeyRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidatePropKey validates a property key.
func ValidatePropKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidProp, "property key cannot be empty")
	}

	if !propKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidProp, "invalid property key: %q", key)
	}

	return nil
}

// ValidateManifestPath validates a manifest file path for safety.
// It prevents null bytes and unreasonably long paths; the path itself may be
// absolute or relative since it comes from the local CLI user.
func ValidateManifestPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidManifest, "manifest path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidManifest, "manifest path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidManifest, "manifest path contains null bytes")
	}

	return nil
}
