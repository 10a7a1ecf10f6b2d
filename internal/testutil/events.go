package testutil

import (
	"testing"
	"time"

	"github.com/ethpandaops/warehouse-utilization/pkg/querylog"
)

// Chicago loads America/Chicago or fails the test.
func Chicago(t testing.TB) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}

	return loc
}

// At parses a "2006-01-02 15:04" or "2006-01-02 15:04:05" wall clock time in loc.
func At(t testing.TB, loc *time.Location, value string) time.Time {
	t.Helper()

	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts
		}
	}

	t.Fatalf("failed to parse fixture time %q", value)

	return time.Time{}
}

// EventSpec is a compact event description for table-driven tests.
type EventSpec struct {
	At        string
	Statement string
}

// Events builds normalized events from specs.
func Events(t testing.TB, loc *time.Location, specs ...EventSpec) []querylog.Event {
	t.Helper()

	events := make([]querylog.Event, 0, len(specs))
	for _, spec := range specs {
		events = append(events, querylog.NewEvent(At(t, loc, spec.At), spec.Statement))
	}

	return events
}
