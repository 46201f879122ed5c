package middleware

import (
	"net/url"
	"strconv"
	"strings"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

// Input validation and sanitization utilities

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// OptionalInt64 parses an optional numeric query/form value
func OptionalInt64(q url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.NewValidationError(name, "harus berupa angka")
	}
	return &v, nil
}

// OptionalInt parses limit/offset. Range clamping happens in the service.
func OptionalInt(q url.Values, name string) (*int, error) {
	v, err := OptionalInt64(q, name)
	if err != nil || v == nil {
		return nil, err
	}
	n := int(*v)
	return &n, nil
}

// ParseBool accepts true/false, 1/0, on/off. Empty = false.
func ParseBool(name, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "0", "off", "no":
		return false, nil
	case "true", "1", "on", "yes":
		return true, nil
	}
	return false, domain.NewValidationError(name, "harus berupa boolean")
}

// ValidateRecordID validates the {id} path segment
func ValidateRecordID(raw string) (domain.RecordID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "id analisis tidak valid")
	}
	return domain.RecordID(id), nil
}
