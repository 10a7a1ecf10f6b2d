package utilization

import (
	"time"
)

// WindowRecord describes one closed activity window
type WindowRecord struct {
	Day             Day
	WindowStart     time.Time
	WindowEnd       time.Time
	TotalQueries    uint64
	DistinctQueries uint64
	CachedQueries   uint64
	// RunningStart and RunningEnd are nil when the window saw no distinct query
	RunningStart   *time.Time
	RunningEnd     *time.Time
	RunningMinutes float64
}

// DailyAggregate sums every window that started on the same day
type DailyAggregate struct {
	Day             Day
	TotalQueries    uint64
	DistinctQueries uint64
	CachedQueries   uint64
	RunningMinutes  float64
}

// Stats summarizes a scan
type Stats struct {
	Events             int
	Windows            int
	Days               int
	CacheHits          uint64
	CacheMisses        uint64
	CacheInvalidations int
}

// Report is the result of one analysis run
type Report struct {
	RunID       string
	Location    *time.Location
	IdleTimeout time.Duration
	Windows     []WindowRecord
	Daily       []DailyAggregate
	Stats       Stats
}
