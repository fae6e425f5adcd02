package output

import (
	"fmt"
	"time"
)

// DateTimeLayout renders timestamps like "05 Mar 2026 • 02:30 PM"
const DateTimeLayout = "02 Jan 2006 • 03:04 PM"

// FormatDateTime formats t in local time, or "-" when unset
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(DateTimeLayout)
}

// FormatDateTimePtr is FormatDateTime for optional timestamps
func FormatDateTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatDateTime(*t)
}

// TimeAgo describes how long before now t happened
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d < 365*24*time.Hour:
		return plural(int(d/(30*24*time.Hour)), "month")
	}
	return plural(int(d/(365*24*time.Hour)), "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Truncate shortens s to max runes, marking the cut with "..."
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
