package utilization

import "time"

// accumulator counts queries for the open window
type accumulator struct {
	total  uint64
	cached uint64
}

func (a *accumulator) hit() {
	a.total++
	a.cached++
}

func (a *accumulator) miss() {
	a.total++
}

func (a *accumulator) empty() bool {
	return a.total == 0
}

func (a *accumulator) reset() {
	*a = accumulator{}
}

// finalize builds the record for a closing window. Distinct queries are derived
// from the counters because the cache may have been emptied mid-window.
func (a *accumulator) finalize(start, end time.Time, running *runningInterval) WindowRecord {
	runningStart, runningEnd := running.bounds()

	return WindowRecord{
		Day:             DayOf(start),
		WindowStart:     start,
		WindowEnd:       end,
		TotalQueries:    a.total,
		DistinctQueries: a.total - a.cached,
		CachedQueries:   a.cached,
		RunningStart:    runningStart,
		RunningEnd:      runningEnd,
		RunningMinutes:  running.minutes(),
	}
}
