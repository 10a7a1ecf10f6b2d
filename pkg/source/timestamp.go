package source

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errEmptyTimestamp = errors.New("empty timestamp")

// DefaultTimestampLayouts are tried in order when no layouts are configured.
// Fractional seconds are accepted by every layout.
//
//nolint:gochecknoglobals // Read-only defaults
var DefaultTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700 MST",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02 15:04",
}

// ParseTimestamp parses value with the first matching layout. Values without
// zone information are taken as wall clock time in loc; values with an offset
// keep their instant and are converted to loc.
//
// A zone-less wall clock time inside a spring-forward gap is rejected with
// ErrNonexistentLocalTime. One inside a repeated fall-back hour resolves to
// its first occurrence.
func ParseTimestamp(value string, layouts []string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errEmptyTimestamp
	}

	if len(layouts) == 0 {
		layouts = DefaultTimestampLayouts
	}

	var firstErr error

	for _, layout := range layouts {
		ts, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			if !layoutHasZone(layout) {
				if err := checkWallClock(layout, value, ts); err != nil {
					return time.Time{}, err
				}
			}

			return ts.In(loc), nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	return time.Time{}, fmt.Errorf("no layout matched: %w", firstErr)
}

func layoutHasZone(layout string) bool {
	for _, token := range []string{"Z07", "-07", "MST"} {
		if strings.Contains(layout, token) {
			return true
		}
	}

	return false
}

// checkWallClock verifies ts still shows the wall clock written in value.
// time.ParseInLocation silently shifts times that fall into a DST gap.
func checkWallClock(layout, value string, ts time.Time) error {
	wall, err := time.Parse(layout, value)
	if err != nil {
		return err
	}

	wy, wm, wd := wall.Date()
	wh, wmin, ws := wall.Clock()
	ty, tm, td := ts.Date()
	th, tmin, tsec := ts.Clock()

	if wy != ty || wm != tm || wd != td || wh != th || wmin != tmin || ws != tsec {
		return fmt.Errorf("%w: %s in %s", ErrNonexistentLocalTime, value, ts.Location())
	}

	return nil
}
