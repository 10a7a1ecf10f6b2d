package utilization

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// runningInterval is the billable span of the open window. It starts at the
// first distinct query and ends one idle timeout after the latest one.
type runningInterval struct {
	start   time.Time
	end     time.Time
	started bool
}

// extend records a distinct query at t
func (r *runningInterval) extend(t time.Time, idleTimeout time.Duration) {
	if !r.started {
		r.start = t
		r.started = true
	}

	r.end = t.Add(idleTimeout)
}

func (r *runningInterval) reset() {
	*r = runningInterval{}
}

// bounds returns copies of the interval ends, nil when no distinct query was seen
func (r *runningInterval) bounds() (start, end *time.Time) {
	if !r.started {
		return nil, nil
	}

	s, e := r.start, r.end

	return &s, &e
}

// minutes converts the span to minutes rounded to two decimals.
// Only whole seconds of the sub-day part of the span count.
func (r *runningInterval) minutes() float64 {
	if !r.started {
		return 0
	}

	seconds := int64((r.end.Sub(r.start) % day) / time.Second)

	return decimal.NewFromInt(seconds).
		Div(decimal.NewFromInt(60)).
		Round(2).
		InexactFloat64()
}
