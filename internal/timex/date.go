package timex

import "time"

// DateLayout is the wire format of calendar dates (birthdays).
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WholeYearsBetween returns the number of full years elapsed from birth to
// now, comparing calendar components only. If now's month/day precedes the
// birth month/day the naive year difference is reduced by one.
func WholeYearsBetween(birth, now time.Time) int {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()

	years := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		years--
	}
	return years
}
