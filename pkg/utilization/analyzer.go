// Package utilization reconstructs warehouse activity windows from a query log
// and rolls them up per day.
package utilization

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ethpandaops/warehouse-utilization/pkg/observability"
	"github.com/ethpandaops/warehouse-utilization/pkg/querylog"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Source supplies the query events to analyze
type Source interface {
	// Name identifies the source in logs and metrics
	Name() string
	// Events loads the complete batch of events. Order is not required.
	Events(ctx context.Context) ([]querylog.Event, error)
}

// Sink persists a finished report
type Sink interface {
	// Name identifies the sink in logs and metrics
	Name() string
	// Write renders the windows and daily rows of the report
	Write(ctx context.Context, report *Report) error
}

// Analyzer runs the window scan over a batch of events
type Analyzer struct {
	log         logrus.FieldLogger
	idleTimeout time.Duration
	loc         *time.Location
}

// NewAnalyzer creates an analyzer from a validated configuration
func NewAnalyzer(log logrus.FieldLogger, cfg Config) (*Analyzer, error) {
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		log:         log.WithField("component", "analyzer"),
		idleTimeout: cfg.IdleTimeout,
		loc:         loc,
	}, nil
}

// Location returns the zone used for localization
func (a *Analyzer) Location() *time.Location {
	return a.loc
}

// Run loads events from src, analyzes them and writes the report to every sink in order.
func (a *Analyzer) Run(ctx context.Context, src Source, sinks ...Sink) (*Report, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	events, err := src.Events(ctx)
	if err != nil {
		observability.RecordError("source", src.Name())
		return nil, fmt.Errorf("failed to load events from %s: %w", src.Name(), err)
	}

	observability.RecordSourceEvents(src.Name(), len(events))

	report, err := a.Analyze(ctx, events)
	if err != nil {
		return nil, err
	}

	log := a.log.WithField("run_id", report.RunID)

	for _, sink := range sinks {
		start := time.Now()

		if err := sink.Write(ctx, report); err != nil {
			observability.RecordSinkWrite(sink.Name(), "error", time.Since(start).Seconds())
			return report, fmt.Errorf("failed to write report to %s: %w", sink.Name(), err)
		}

		observability.RecordSinkWrite(sink.Name(), "success", time.Since(start).Seconds())

		log.WithFields(logrus.Fields{
			"sink":     sink.Name(),
			"duration": time.Since(start),
		}).Debug("Wrote report")
	}

	observability.LastRunTimestamp.SetToCurrentTime()

	return report, nil
}

// Analyze scans events and builds the report. Events are stably sorted by
// timestamp first; the input slice is not modified. A cancelled context stops
// the scan and no report is returned.
func (a *Analyzer) Analyze(ctx context.Context, events []querylog.Event) (*Report, error) {
	start := time.Now()

	report := &Report{
		RunID:       uuid.NewString(),
		Location:    a.loc,
		IdleTimeout: a.idleTimeout,
		Windows:     make([]WindowRecord, 0),
	}

	log := a.log.WithFields(logrus.Fields{
		"run_id":       report.RunID,
		"events":       len(events),
		"idle_timeout": a.idleTimeout,
		"timezone":     a.loc.String(),
	})
	log.Info("Starting window scan")

	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(x, y querylog.Event) int {
		return x.Timestamp.Compare(y.Timestamp)
	})

	seg := NewSegmenter(a.idleTimeout, a.loc)
	daily := NewDailyAggregator()

	emit := func(rec WindowRecord) {
		report.Windows = append(report.Windows, rec)
		daily.Add(rec)
		observability.RecordWindow(rec.RunningMinutes)
	}

	for _, ev := range ordered {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Window scan cancelled")
			return nil, err
		}

		obs, err := seg.Observe(ev)
		if err != nil {
			return nil, fmt.Errorf("failed to observe event: %w", err)
		}

		if obs.Closed != nil {
			emit(*obs.Closed)
		}

		if obs.Invalidated {
			report.Stats.CacheInvalidations++
			observability.StatementCacheInvalidations.Inc()
		}

		switch obs.Class {
		case Cached:
			report.Stats.CacheHits++
			observability.RecordCacheLookup(true)
		case Distinct:
			report.Stats.CacheMisses++
			observability.RecordCacheLookup(false)
		}
	}

	if rec := seg.Finish(); rec != nil {
		emit(*rec)
	}

	report.Daily = daily.Aggregates()
	report.Stats.Events = len(ordered)
	report.Stats.Windows = len(report.Windows)
	report.Stats.Days = len(report.Daily)

	observability.RecordScan(len(ordered), time.Since(start).Seconds())

	log.WithFields(logrus.Fields{
		"windows":       report.Stats.Windows,
		"days":          report.Stats.Days,
		"cache_hits":    report.Stats.CacheHits,
		"invalidations": report.Stats.CacheInvalidations,
		"duration":      time.Since(start),
	}).Info("Completed window scan")

	return report, nil
}
