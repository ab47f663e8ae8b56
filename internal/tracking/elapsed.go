// Package tracking holds the presentation side of running time logs:
// the HH:MM clock, calendar-day grouping and the quarter-hour chime.
package tracking

import (
	"fmt"
	"time"
)

// FormatElapsed renders a duration as zero-padded "HH:MM". Hours and minutes
// are floored and hours never roll over into days (30h is "30:00").
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int64(d / time.Hour)
	minutes := int64(d/time.Minute) % 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// FormatElapsedMillis is FormatElapsed for a millisecond count
func FormatElapsedMillis(ms int64) string {
	return FormatElapsed(time.Duration(ms) * time.Millisecond)
}

// IsSameCalendarDay reports whether a and b fall on the same local date
func IsSameCalendarDay(a, b time.Time) bool {
	a, b = a.Local(), b.Local()
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
