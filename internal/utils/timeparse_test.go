package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestampLayouts(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"rfc3339", "2025-06-01T10:30:00Z", time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"date t time no seconds", "2025-06-01T10:30", time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"date space time seconds", "2025-06-01 10:30:45", time.Date(2025, 6, 1, 10, 30, 45, 0, time.UTC)},
		{"date space time no seconds", "2025-06-01 10:30", time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"surrounding whitespace", "  2025-06-01 10:30  ", time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseTimestamp(tc.input)
			require.NoError(t, err)
			require.True(t, tc.expected.Equal(parsed))
		})
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "yesterday", "01/06/2025", "2025-13-40 99:99"} {
		_, err := ParseTimestamp(input)
		require.Error(t, err)
	}
}
