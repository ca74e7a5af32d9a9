package leaderboard

import (
	"fmt"
	"time"
)

// TimeAgo renders the age of t relative to now the way the scoreboard shows it.
func TimeAgo(now, t time.Time) string {
	if t.IsZero() {
		return "Just now"
	}
	d := now.Sub(t)
	switch {
	case d >= 24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d >= time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	}
	return "Just now"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
