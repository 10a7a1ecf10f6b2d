package report

import (
	"context"
	"fmt"
	"time"

	"github.com/ethpandaops/warehouse-utilization/pkg/clickhouse"
	"github.com/ethpandaops/warehouse-utilization/pkg/utilization"
	"github.com/sirupsen/logrus"
)

// clickHouseTimeLayout is the DateTime64(3) input format; values are written in UTC
const clickHouseTimeLayout = "2006-01-02 15:04:05.000"

// ClickHouseSink appends both tables to ClickHouse, tagged with the run id
type ClickHouseSink struct {
	log    logrus.FieldLogger
	tables *clickhouse.TableManager
}

// NewClickHouseSink creates a ClickHouse sink
func NewClickHouseSink(log logrus.FieldLogger, tables *clickhouse.TableManager) (*ClickHouseSink, error) {
	if tables == nil {
		return nil, ErrTablesRequired
	}

	return &ClickHouseSink{
		log:    log.WithFields(logrus.Fields{"component": "clickhouse-sink", "database": tables.Database()}),
		tables: tables,
	}, nil
}

// Name implements utilization.Sink
func (s *ClickHouseSink) Name() string {
	return "clickhouse"
}

// Write implements utilization.Sink
func (s *ClickHouseSink) Write(ctx context.Context, report *utilization.Report) error {
	if report == nil {
		return ErrNilReport
	}

	if err := s.tables.EnsureTables(ctx); err != nil {
		return err
	}

	if err := s.tables.InsertWindows(ctx, WindowRows(report)); err != nil {
		return fmt.Errorf("failed to insert %s: %w", WindowsTable, err)
	}

	if err := s.tables.InsertDaily(ctx, DailyRows(report)); err != nil {
		return fmt.Errorf("failed to insert %s: %w", DailyTable, err)
	}

	s.log.WithFields(logrus.Fields{
		"run_id":  report.RunID,
		"windows": len(report.Windows),
		"days":    len(report.Daily),
	}).Info("Inserted report rows")

	return nil
}

// WindowRows converts window records to ClickHouse rows
func WindowRows(report *utilization.Report) []clickhouse.WindowRow {
	rows := make([]clickhouse.WindowRow, 0, len(report.Windows))

	for _, r := range report.Windows {
		rows = append(rows, clickhouse.WindowRow{
			RunID:           report.RunID,
			Day:             r.Day.String(),
			WindowStart:     clickHouseTime(r.WindowStart),
			WindowEnd:       clickHouseTime(r.WindowEnd),
			TotalQueries:    r.TotalQueries,
			DistinctQueries: r.DistinctQueries,
			CachedQueries:   r.CachedQueries,
			RunningStart:    optionalClickHouseTime(r.RunningStart),
			RunningEnd:      optionalClickHouseTime(r.RunningEnd),
			RunningMinutes:  r.RunningMinutes,
		})
	}

	return rows
}

// DailyRows converts daily aggregates to ClickHouse rows
func DailyRows(report *utilization.Report) []clickhouse.DailyRow {
	rows := make([]clickhouse.DailyRow, 0, len(report.Daily))

	for _, a := range report.Daily {
		rows = append(rows, clickhouse.DailyRow{
			RunID:           report.RunID,
			Day:             a.Day.String(),
			TotalQueries:    a.TotalQueries,
			DistinctQueries: a.DistinctQueries,
			CachedQueries:   a.CachedQueries,
			RunningMinutes:  a.RunningMinutes,
		})
	}

	return rows
}

func clickHouseTime(t time.Time) string {
	return t.UTC().Format(clickHouseTimeLayout)
}

func optionalClickHouseTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := clickHouseTime(*t)

	return &s
}
