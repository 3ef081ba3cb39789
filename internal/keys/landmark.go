package keys

import (
	"fmt"
	"strings"

	"treasurehunt/internal/models"
)

// sanitizeKey replaces spaces and underscores with hyphens and lowercases the
// string.
func sanitizeKey(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	return strings.ToLower(s)
}

// Landmark returns the canonical S3 key for a Landmark object.
func Landmark(l models.Landmark) string {
	return fmt.Sprintf("landmarks/%s.json", l.ID)
}

// Strings returns the S3 key of the string table for locale.
func Strings(locale string) string {
	return fmt.Sprintf("strings/%s.json", sanitizeKey(locale))
}
