// Package querylog defines the query events consumed by the utilization scan
package querylog

import (
	"strings"
	"time"
)

// Event is a single executed query taken from a query log
type Event struct {
	Timestamp time.Time
	Statement string
}

// NewEvent builds an event with a normalized statement
func NewEvent(ts time.Time, statement string) Event {
	return Event{
		Timestamp: ts,
		Statement: Normalize(statement),
	}
}

// Normalize trims surrounding whitespace and uppercases the statement text.
// Two statements are considered identical when their normalized forms match.
func Normalize(statement string) string {
	return strings.ToUpper(strings.TrimSpace(statement))
}
