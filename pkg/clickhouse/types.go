package clickhouse

// WindowRow is one row of the warehouse_utilization table.
// Timestamps are UTC strings in "2006-01-02 15:04:05.000" form.
type WindowRow struct {
	RunID           string  `json:"run_id"`
	Day             string  `json:"day"`
	WindowStart     string  `json:"window_start"`
	WindowEnd       string  `json:"window_end"`
	TotalQueries    uint64  `json:"total_queries"`
	DistinctQueries uint64  `json:"distinct_queries"`
	CachedQueries   uint64  `json:"cached_queries"`
	RunningStart    *string `json:"running_start"`
	RunningEnd      *string `json:"running_end"`
	RunningMinutes  float64 `json:"running_minutes"`
}

// DailyRow is one row of the daily_aggregation table
type DailyRow struct {
	RunID           string  `json:"run_id"`
	Day             string  `json:"day"`
	TotalQueries    uint64  `json:"total_queries"`
	DistinctQueries uint64  `json:"distinct_queries"`
	CachedQueries   uint64  `json:"cached_queries"`
	RunningMinutes  float64 `json:"running_minutes"`
}
