package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethpandaops/warehouse-utilization/pkg/utilization"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// DefaultXLSXPath is the workbook written when no path is configured
const DefaultXLSXPath = "query_data_analysis.xlsx"

const defaultSheet = "Sheet1"

// XLSXSink writes both tables into one workbook
type XLSXSink struct {
	log  logrus.FieldLogger
	path string
}

// NewXLSXSink creates a workbook sink writing to path
func NewXLSXSink(log logrus.FieldLogger, path string) (*XLSXSink, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	return &XLSXSink{
		log:  log.WithFields(logrus.Fields{"component": "xlsx-sink", "path": path}),
		path: path,
	}, nil
}

// Name implements utilization.Sink
func (s *XLSXSink) Name() string {
	return "xlsx"
}

// Path returns the workbook location
func (s *XLSXSink) Path() string {
	return s.path
}

// Write implements utilization.Sink
func (s *XLSXSink) Write(ctx context.Context, report *utilization.Report) error {
	if report == nil {
		return ErrNilReport
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.log.WithError(closeErr).Debug("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName(defaultSheet, WindowsTable); err != nil {
		return fmt.Errorf("failed to name sheet %s: %w", WindowsTable, err)
	}

	if _, err := f.NewSheet(DailyTable); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", DailyTable, err)
	}

	windows := make([][]interface{}, 0, len(report.Windows))
	for _, r := range report.Windows {
		windows = append(windows, windowValues(r))
	}

	if err := writeSheet(f, WindowsTable, WindowColumns, windows); err != nil {
		return err
	}

	daily := make([][]interface{}, 0, len(report.Daily))
	for _, a := range report.Daily {
		daily = append(daily, dailyValues(a))
	}

	if err := writeSheet(f, DailyTable, DailyColumns, daily); err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"windows": len(report.Windows),
		"days":    len(report.Daily),
	}).Info("Wrote workbook")

	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}

	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	return nil
}
