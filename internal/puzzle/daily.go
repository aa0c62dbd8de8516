package puzzle

import "time"

// Epoch is the date of puzzle #1; one puzzle is published per day after it.
var Epoch = time.Date(2023, time.June, 12, 0, 0, 0, 0, time.UTC)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// IDForDate returns the puzzle id published on the UTC day of t, or 0 for
// days before the first puzzle.
func IDForDate(t time.Time) int {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(Epoch) {
		return 0
	}
	return int(day.Sub(Epoch).Hours()/24) + 1
}

// DateForID returns the UTC publication date of a puzzle id.
func DateForID(id int) time.Time {
	if id < 1 {
		return Epoch
	}
	return Epoch.AddDate(0, 0, id-1)
}

// Today returns today's puzzle id.
func Today() int { return IDForDate(time.Now()) }
