package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethpandaops/warehouse-utilization/pkg/utilization"
	"github.com/sirupsen/logrus"
)

// CSVSink writes <dir>/warehouse_utilization.csv and <dir>/daily_aggregation.csv
type CSVSink struct {
	log logrus.FieldLogger
	dir string
}

// NewCSVSink creates a CSV sink writing into dir
func NewCSVSink(log logrus.FieldLogger, dir string) (*CSVSink, error) {
	if dir == "" {
		return nil, ErrDirRequired
	}

	return &CSVSink{
		log: log.WithFields(logrus.Fields{"component": "csv-sink", "dir": dir}),
		dir: dir,
	}, nil
}

// Name implements utilization.Sink
func (s *CSVSink) Name() string {
	return "csv"
}

// Write implements utilization.Sink
func (s *CSVSink) Write(ctx context.Context, report *utilization.Report) error {
	if report == nil {
		return ErrNilReport
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	windows := make([][]string, 0, len(report.Windows))
	for _, r := range report.Windows {
		windows = append(windows, WindowStrings(r))
	}

	if err := s.writeFile(WindowsTable, WindowColumns, windows); err != nil {
		return err
	}

	daily := make([][]string, 0, len(report.Daily))
	for _, a := range report.Daily {
		daily = append(daily, DailyStrings(a))
	}

	if err := s.writeFile(DailyTable, DailyColumns, daily); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"windows": len(report.Windows),
		"days":    len(report.Daily),
	}).Info("Wrote csv files")

	return nil
}

func (s *CSVSink) writeFile(table string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, table+".csv")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}
