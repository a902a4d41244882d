// Package util holds small display helpers used by the command-line client.
package util

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// FormatDuration formats duration into human readable format (e.g., "6d23h", "1h30m", "5m10s", "45s").
// Negative durations format as "0s".
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	}

	if duration < time.Hour {
		m := int(duration.Minutes())
		s := int(duration.Seconds()) % 60

		return fmt.Sprintf("%dm%ds", m, s)
	}

	if duration < day {
		h := int(duration.Hours())
		m := int(duration.Minutes()) % 60

		return fmt.Sprintf("%dh%dm", h, m)
	}

	d := int(duration / day)
	h := int(duration.Hours()) % 24

	return fmt.Sprintf("%dd%dh", d, h)
}
