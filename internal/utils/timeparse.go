package utils

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp layouts accepted at API boundaries, tried in order. Clients have
// historically sent deadlines in several close-but-different formats, so the
// parser normalises them before any window arithmetic happens.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses a client-supplied timestamp using the accepted
// layouts. Layouts without an explicit offset are interpreted as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("timestamp must not be empty")
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}
