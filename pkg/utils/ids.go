package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID creates a short, human-readable identifier.
// Format: {kind}-{subject}-{8charHexUUID}
//
// Example:
//   - Input: kind="dock", subject="HELEN III"
//   - Output: "dock-HELEN-III-a3f8e2b1"
func GenerateID(kind, subject string) string {
	return kind + "-" + slug(subject) + "-" + generateShortUUID()
}

// NewUUID returns a random UUID string for rows that need a full identifier.
func NewUUID() string {
	return uuid.NewString()
}

// slug upper-cases the subject and joins its words with hyphens:
//   - "HELEN III" -> "HELEN-III"
//   - "bari"      -> "BARI"
//   - ""          -> "NONE"
func slug(subject string) string {
	fields := strings.Fields(strings.ToUpper(subject))
	if len(fields) == 0 {
		return "NONE"
	}
	return strings.Join(fields, "-")
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
