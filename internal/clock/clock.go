// Package clock converts between the "HH:MM" wall-clock representation used
// at the edges of the system and the integer minutes-since-midnight
// representation the scheduling engine computes with.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// ToMinutes parses "HH:MM" into minutes since midnight. A bare "HH" is treated
// as a whole hour. Malformed input is a caller precondition violation; the
// unparseable component contributes 0 rather than producing an error.
func ToMinutes(s string) int {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)

	h, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	m := 0
	if len(parts) == 2 {
		m, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return h*60 + m
}

// ToTime formats minutes since midnight as zero-padded "HH:MM". The domain is
// 0–1439; callers clamp multi-day overflow before formatting.
func ToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Span formats a [start, end) window as "HH:MM-HH:MM" for notes and logs.
func Span(start, end int) string {
	return ToTime(start) + "-" + ToTime(end)
}
