package utilization

import (
	"fmt"
	"time"

	"github.com/ethpandaops/warehouse-utilization/pkg/querylog"
)

type windowState int

const (
	stateNoWindow windowState = iota
	stateWindowOpen
)

func (s windowState) String() string {
	switch s {
	case stateNoWindow:
		return "no_window"
	case stateWindowOpen:
		return "window_open"
	default:
		return fmt.Sprintf("windowState(%d)", int(s))
	}
}

// Classification tells how an observed event was counted
type Classification int

const (
	// Distinct is a cache miss that extends the running interval
	Distinct Classification = iota
	// Cached is a cache hit
	Cached
)

// Observation is the outcome of feeding one event to the segmenter
type Observation struct {
	// Closed is the window the event closed, if any
	Closed *WindowRecord
	// Class is how the event itself was counted
	Class Classification
	// Invalidated is true when the event emptied the statement cache
	Invalidated bool
}

// Segmenter splits a time-ordered event stream into activity windows.
//
// Every event slides the window deadline to its timestamp plus the idle
// timeout. An event arriving after the deadline closes the open window and
// opens a new one starting at that event.
type Segmenter struct {
	idleTimeout time.Duration
	loc         *time.Location

	state       windowState
	windowStart time.Time
	windowEnd   time.Time
	last        time.Time

	cache   *StatementCache
	running runningInterval
	counts  accumulator
}

// NewSegmenter creates a segmenter. Window days are derived in loc; a nil loc keeps
// each timestamp's own location.
func NewSegmenter(idleTimeout time.Duration, loc *time.Location) *Segmenter {
	return &Segmenter{
		idleTimeout: idleTimeout,
		loc:         loc,
		state:       stateNoWindow,
		cache:       NewStatementCache(),
	}
}

// Observe feeds the next event. Events must arrive in non-decreasing timestamp order.
func (s *Segmenter) Observe(ev querylog.Event) (Observation, error) {
	t := ev.Timestamp
	if s.loc != nil {
		t = t.In(s.loc)
	}

	var obs Observation

	switch s.state {
	case stateNoWindow:
		s.open(t)
	case stateWindowOpen:
		if t.Before(s.last) {
			return obs, fmt.Errorf("%w: %s < %s", ErrOutOfOrder, t.Format(time.RFC3339Nano), s.last.Format(time.RFC3339Nano))
		}

		if t.After(s.windowEnd) {
			closed := s.close()
			obs.Closed = &closed

			s.open(t)
		}
	}

	s.windowEnd = t.Add(s.idleTimeout)
	s.last = t

	obs.Class, obs.Invalidated = s.count(t, ev.Statement)

	return obs, nil
}

// Finish closes the open window if it counted any query. The segmenter is
// back in its initial window state afterwards; the statement cache is kept.
func (s *Segmenter) Finish() *WindowRecord {
	if s.state != stateWindowOpen || s.counts.empty() {
		s.state = stateNoWindow
		return nil
	}

	rec := s.close()

	return &rec
}

func (s *Segmenter) open(t time.Time) {
	s.state = stateWindowOpen
	s.windowStart = t
	s.windowEnd = t.Add(s.idleTimeout)
	s.counts.reset()
	s.running.reset()
}

func (s *Segmenter) close() WindowRecord {
	rec := s.counts.finalize(s.windowStart, s.windowEnd, &s.running)

	s.state = stateNoWindow
	s.counts.reset()
	s.running.reset()

	return rec
}

// count classifies a statement. Invalidation runs first so a mutating statement
// is always distinct.
func (s *Segmenter) count(t time.Time, raw string) (Classification, bool) {
	statement := querylog.Normalize(raw)

	invalidated := s.cache.InvalidateIfMutating(statement)

	if s.cache.Contains(statement) {
		s.counts.hit()
		return Cached, invalidated
	}

	s.cache.Record(statement)
	s.counts.miss()
	s.running.extend(t, s.idleTimeout)

	return Distinct, invalidated
}
