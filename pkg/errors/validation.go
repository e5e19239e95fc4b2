package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds person identifiers accepted from requests.
const maxIDLength = 128

// ValidatePersonID validates a person identifier taken from user input
// (URL path segments, --root flags). It rejects empty identifiers, control
// characters and path separators.
func ValidatePersonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "person id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "person id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "person id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "person id cannot contain path separators")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateSearchQuery normalizes a search query and reports whether it is
// long enough to run. Queries shorter than minRunes after trimming are
// rejected with ErrCodeInvalidInput.
func ValidateSearchQuery(q string, minRunes int) (string, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if len([]rune(q)) < minRunes {
		return "", New(ErrCodeInvalidInput, "search query must be at least %d characters", minRunes)
	}
	return q, nil
}
