// Package dates parses the assorted timestamp formats found in RSS and Atom
// feeds and answers recency questions about them.
package dates

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Parse returns the timestamp encoded in s in UTC, or nil when s is empty or
// cannot be parsed. Strings without a zone are read as UTC.
func Parse(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	t, err := parse(s)
	if err != nil {
		slog.Warn("Failed to parse date", "value", s, "err", err)
		return nil
	}
	t = t.UTC()
	return &t
}

// dateparse panics on a handful of malformed inputs.
func parse(s string) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errUnparseable
		}
	}()
	return dateparse.ParseIn(s, time.UTC)
}

var errUnparseable = errors.New("unparseable date")

// IsRecent reports whether t is at or after cutoff. A nil t is never recent.
func IsRecent(t *time.Time, cutoff time.Time) bool {
	if t == nil {
		return false
	}
	return !t.Before(cutoff)
}
