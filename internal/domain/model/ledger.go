package model

import (
	"fmt"
	"time"
)

// Day is a calendar date key in YYYY-MM-DD form. One ledger and one worksheet
// exist per day.
type Day string

const dayLayout = "2006-01-02"

// DayOf returns the Day containing t in the given location.
func DayOf(t time.Time, loc *time.Location) Day {
	return Day(t.In(loc).Format(dayLayout))
}

// ParseDay validates a YYYY-MM-DD string and returns it as a Day.
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: expected YYYY-MM-DD", s)
	}
	return Day(s), nil
}

// WorksheetTitle returns the per-day worksheet name, e.g.
// "staging-release-2024-03-05" for the default prefix.
func (d Day) WorksheetTitle(prefix string) string {
	return prefix + "-" + string(d)
}

// DayLedger tracks per-day completion counters and the report dispatch claim.
type DayLedger struct {
	Day           Day
	ExpectedTotal int       // Number of test runs expected for the day; 0 means unknown.
	TestsRun      int       // Number of results recorded so far.
	DispatchedAt  time.Time // Zero until the report dispatch has been claimed.
}

// Complete reports whether every expected test run has been recorded. A day
// with no expected total is never complete: missing means unknown, not zero.
func (l DayLedger) Complete() bool {
	return l.ExpectedTotal > 0 && l.TestsRun >= l.ExpectedTotal
}

// Dispatched reports whether the report dispatch has already been claimed.
func (l DayLedger) Dispatched() bool {
	return !l.DispatchedAt.IsZero()
}
