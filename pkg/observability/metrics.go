package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// EventsScanned counts query events fed to the window segmenter
	EventsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wu_events_scanned_total",
			Help: "Total number of query events scanned",
		},
	)

	// WindowsEmitted counts closed activity windows
	WindowsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wu_windows_emitted_total",
			Help: "Total number of activity windows emitted",
		},
	)

	// StatementCacheLookups counts statement cache lookups by result
	StatementCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wu_statement_cache_lookups_total",
			Help: "Total number of statement cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)

	// StatementCacheInvalidations counts cache clears caused by mutating statements
	StatementCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wu_statement_cache_invalidations_total",
			Help: "Total number of statement cache invalidations",
		},
	)

	// RunningMinutes accumulates billable running minutes across emitted windows
	RunningMinutes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wu_running_minutes_total",
			Help: "Total billable running minutes of emitted windows",
		},
	)

	// ScanDuration measures how long a full scan takes
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wu_scan_duration_seconds",
			Help:    "Window scan duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4m
		},
	)

	// SourceEvents counts events loaded per source
	SourceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wu_source_events_total",
			Help: "Total number of events loaded from a source",
		},
		[]string{"source"},
	)

	// SinkWrites counts report writes per sink
	SinkWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wu_sink_writes_total",
			Help: "Total number of report writes",
		},
		[]string{"sink", "status"}, // status: success, error
	)

	// SinkWriteDuration measures report write time per sink
	SinkWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wu_sink_write_duration_seconds",
			Help:    "Report write duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"sink"},
	)

	// ClickHouseQueries counts total number of ClickHouse queries executed
	ClickHouseQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wu_clickhouse_queries_total",
			Help: "Total number of ClickHouse queries executed",
		},
		[]string{"query_type", "status"}, // query_type: select, insert, ddl; status: success, error
	)

	// ClickHouseQueryDuration measures ClickHouse query execution time
	ClickHouseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wu_clickhouse_query_duration_seconds",
			Help:    "ClickHouse query execution time",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"query_type"},
	)

	// LastRunTimestamp is the unix time of the last completed analysis
	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wu_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed analysis run",
		},
	)

	// ErrorsTotal counts total number of errors
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wu_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordCacheLookup records a statement cache hit or miss
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	StatementCacheLookups.WithLabelValues(result).Inc()
}

// RecordWindow records an emitted window and its running minutes
func RecordWindow(runningMinutes float64) {
	WindowsEmitted.Inc()
	RunningMinutes.Add(runningMinutes)
}

// RecordScan records a completed scan
func RecordScan(events int, duration float64) {
	EventsScanned.Add(float64(events))
	ScanDuration.Observe(duration)
}

// RecordSourceEvents records events loaded from a source
func RecordSourceEvents(source string, count int) {
	SourceEvents.WithLabelValues(source).Add(float64(count))
}

// RecordSinkWrite records a report write
func RecordSinkWrite(sink, status string, duration float64) {
	SinkWrites.WithLabelValues(sink, status).Inc()
	SinkWriteDuration.WithLabelValues(sink).Observe(duration)
}

// RecordClickHouseQuery records ClickHouse query metrics
func RecordClickHouseQuery(queryType, status string, duration float64) {
	ClickHouseQueries.WithLabelValues(queryType, status).Inc()
	ClickHouseQueryDuration.WithLabelValues(queryType).Observe(duration)
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
