package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds station and line identifiers.
const maxIDLength = 128

// idRegex matches identifiers usable in URLs, file names and storage keys.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateID validates a station or line identifier.
// Identifiers end up in URL paths, file names and storage keys, so the
// rules are conservative:
//   - No empty identifiers
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIDLength)
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid %s id: %q", kind, id)
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "%s id cannot contain '..'", kind)
	}
	return nil
}

// ValidateStation validates a station identifier and display name.
func ValidateStation(id, name string) error {
	if err := ValidateID("station", id); err != nil {
		return &Error{Code: ErrCodeInvalidStation, Message: UserMessage(err)}
	}
	return ValidateName("station", name)
}

// ValidateName validates a display name. Empty names are allowed.
func ValidateName(kind, name string) error {
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "%s name too long (max 256 characters)", kind)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains invalid control characters", kind)
		}
	}
	return nil
}

// ValidateDistance validates a section distance.
func ValidateDistance(distance int) error {
	if distance <= 0 {
		return New(ErrCodeInvalidDistance, "distance must be a positive integer, got %d", distance)
	}
	return nil
}

// ValidatePath validates a file path for safety.
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
