package ui

import (
	"fmt"
	"time"

	"github.com/muesli/reflow/wordwrap"
)

// timeAgo renders a compact relative timestamp for message lists.
func timeAgo(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// wrapBody wraps a message body to the transcript width, guarding
// against degenerate widths during startup resize.
func wrapBody(body string, width int) string {
	if width < 16 {
		width = 16
	}
	return wordwrap.String(body, width)
}

// truncate cuts s to max runes with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
