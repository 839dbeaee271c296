package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxKeyLen  = 200
	maxPathLen = 500
)

// keyPattern admits the characters that are safe as a file name, a Redis
// key and a Mongo _id alike.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// ValidateKey checks a user-supplied snapshot name or store key.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return New(ErrCodeInvalidKey, "empty key")
	case len(key) > maxKeyLen:
		return New(ErrCodeInvalidKey, "key longer than %d characters", maxKeyLen)
	case strings.Contains(key, ".."):
		return New(ErrCodeInvalidKey, "key %q contains \"..\"", key)
	case !keyPattern.MatchString(key):
		return New(ErrCodeInvalidKey, "key %q may only contain letters, digits and ._:-", key)
	}
	return nil
}

// ValidatePath rejects empty, overlong and control-character paths before
// they reach the filesystem.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "empty path")
	}
	if len(path) > maxPathLen {
		return New(ErrCodeInvalidInput, "path longer than %d characters", maxPathLen)
	}
	if strings.IndexFunc(path, unicode.IsControl) >= 0 {
		return New(ErrCodeInvalidInput, "path %q contains control characters", path)
	}
	return nil
}

// ValidateRange checks that n lies in [lo, hi].
func ValidateRange(name string, n, lo, hi int) error {
	if n < lo || n > hi {
		return New(ErrCodeInvalidInput, "%s must be between %d and %d, got %d", name, lo, hi, n)
	}
	return nil
}
