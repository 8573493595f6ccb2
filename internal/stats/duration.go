// Package stats folds study laps into calendar buckets and
// derives summary figures for the statistics dashboards.
package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseSeconds parses "HH:MM:SS" or "HH:MM" into seconds.
// Malformed or empty input yields 0.
func ParseSeconds(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}

	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		if i > 0 && n > 59 {
			return 0
		}
		fields[i] = n
	}
	return fields[0]*3600 + fields[1]*60 + fields[2]
}

// ParseDuration parses a lap duration into whole minutes,
// truncating leftover seconds.
func ParseDuration(s string) int {
	return ParseSeconds(s) / 60
}

// FormatDuration renders d as "HH:MM:SS". Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}
