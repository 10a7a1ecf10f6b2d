package utilization

import "regexp"

// mutatingStatement matches the keywords as whole words. RE2's \b only knows
// ASCII word characters, so boundaries are spelled out over Unicode letters,
// numbers and underscore: ÉUPDATE is one word and does not match.
//
//nolint:gochecknoglobals // Compiled once
var mutatingStatement = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(?:TRUNCATE|INSERT|UPDATE)(?:[^\p{L}\p{N}_]|$)`)

// IsMutating reports whether the statement contains TRUNCATE, INSERT or UPDATE as a whole word
func IsMutating(statement string) bool {
	return mutatingStatement.MatchString(statement)
}

// StatementCache remembers statements the warehouse could answer from its result cache.
// It lives for the whole scan and is only emptied by mutating statements, so entries
// survive window boundaries.
type StatementCache struct {
	seen map[string]struct{}
}

// NewStatementCache creates an empty cache
func NewStatementCache() *StatementCache {
	return &StatementCache{
		seen: make(map[string]struct{}),
	}
}

// Contains reports whether the statement was seen since the last invalidation
func (c *StatementCache) Contains(statement string) bool {
	_, ok := c.seen[statement]

	return ok
}

// Record marks the statement as seen
func (c *StatementCache) Record(statement string) {
	c.seen[statement] = struct{}{}
}

// InvalidateIfMutating clears the whole cache when the statement mutates data.
// It returns true if the cache was cleared.
func (c *StatementCache) InvalidateIfMutating(statement string) bool {
	if !IsMutating(statement) {
		return false
	}

	clear(c.seen)

	return true
}

// Len returns the number of cached statements
func (c *StatementCache) Len() int {
	return len(c.seen)
}
