// Package dates turns the human-readable timestamps wiki pages render into
// time values.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	ErrEmpty        = errors.New("empty date string")
	ErrUnrecognized = errors.New("unrecognized date")
)

var (
	agoRe = regexp.MustCompile(`^(\d+|an?|one)\s+(second|minute|hour|day|week|month|year)s?\s+ago$`)
	dayRe = regexp.MustCompile(`^(just now|today|yesterday)(?:\s+at\s+(.+))?$`)
)

// Parse reads s as an absolute date in now's location, falling back to the
// relative phrases wikis show for recent edits ("5 minutes ago",
// "yesterday at 3:15 PM").
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}

	if t, err := dateparse.ParseIn(s, now.Location()); err == nil {
		return t, nil
	}

	if t, ok := parseRelative(strings.ToLower(s), now); ok {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, s)
}

func parseRelative(s string, now time.Time) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")

	if m := agoRe.FindStringSubmatch(s); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		switch m[2] {
		case "second":
			return now.Add(-time.Duration(n) * time.Second), true
		case "minute":
			return now.Add(-time.Duration(n) * time.Minute), true
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour), true
		case "day":
			return now.AddDate(0, 0, -n), true
		case "week":
			return now.AddDate(0, 0, -n*7), true
		case "month":
			return now.AddDate(0, -n, 0), true
		case "year":
			return now.AddDate(-n, 0, 0), true
		}
	}

	m := dayRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	if m[1] == "just now" {
		return now, m[2] == ""
	}

	day := now
	if m[1] == "yesterday" {
		day = now.AddDate(0, 0, -1)
	}
	if m[2] == "" {
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location()), true
	}

	clock, ok := parseClock(m[2])
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location()), true
}

func parseClock(s string) (time.Time, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
