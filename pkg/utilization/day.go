package utilization

import (
	"fmt"
	"time"
)

// Day is a calendar date in the analysis timezone
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar date of t in t's own location
func DayOf(t time.Time) Day {
	y, m, d := t.Date()

	return Day{Year: y, Month: m, Day: d}
}

// String formats the day as YYYY-MM-DD
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
