// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"fmt"
	"strings"
	"time"
)

// StoredTimeLayout is the space-separated shape raw storage timestamps take
// ("2025-12-25 15:47:15"). API responses use it; the ISO-8601 shape appears
// on inputs and anywhere a value round-trips through JSON date handling.
const StoredTimeLayout = "2006-01-02 15:04:05"

// BlockTimeISO converts a block timestamp (seconds since epoch) into the
// ISO-8601 string the metadata API accepts.
func BlockTimeISO(ts uint64) string {
	return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}

// ParseStoredTime parses a stored timestamp in either of the two shapes
// that cross the API boundary: ISO-8601 with a "T" separator, or the
// space-separated storage shape. Both represent UTC instants, so the two
// shapes of one timestamp parse to the same instant.
func ParseStoredTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if strings.Contains(value, "T") {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid ISO timestamp %q: %w", value, err)
		}
		return t.UTC(), nil
	}

	t, err := time.ParseInLocation(StoredTimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", value, err)
	}
	return t, nil
}

// FormatLocal renders a stored timestamp for display in the reader's local
// time. Unparseable or empty values display as a dash, matching the
// dashboard's blank-field placeholder.
func FormatLocal(value string) string {
	t, err := ParseStoredTime(value)
	if err != nil {
		return "—"
	}
	return t.Local().Format(StoredTimeLayout)
}
