package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/ethpandaops/warehouse-utilization/pkg/utilization"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ConsoleSink prints both tables to a terminal
type ConsoleSink struct {
	log logrus.FieldLogger
	out io.Writer
}

// NewConsoleSink creates a console sink writing to out
func NewConsoleSink(log logrus.FieldLogger, out io.Writer) *ConsoleSink {
	return &ConsoleSink{
		log: log.WithField("component", "console-sink"),
		out: out,
	}
}

// Name implements utilization.Sink
func (s *ConsoleSink) Name() string {
	return "console"
}

// Write implements utilization.Sink
func (s *ConsoleSink) Write(ctx context.Context, report *utilization.Report) error {
	if report == nil {
		return ErrNilReport
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	windows := make([][]string, 0, len(report.Windows))
	for _, r := range report.Windows {
		windows = append(windows, WindowStrings(r))
	}

	if err := s.render(WindowsTable, WindowColumns, windows, nil); err != nil {
		return err
	}

	daily := make([][]string, 0, len(report.Daily))
	for _, a := range report.Daily {
		daily = append(daily, DailyStrings(a))
	}

	return s.render(DailyTable, DailyColumns, daily, dailyTotals(report.Daily))
}

func (s *ConsoleSink) render(title string, header []string, rows [][]string, footer []string) error {
	if _, err := fmt.Fprintf(s.out, "\n%s (%d rows)\n", title, len(rows)); err != nil {
		return err
	}

	table := tablewriter.NewTable(s.out)
	table.Header(header)

	alignments := make([]tw.Align, len(header))
	for i := range alignments {
		alignments[i] = tw.AlignRight
	}

	alignments[0] = tw.AlignLeft

	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.PerColumn = alignments
	})

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append %s row: %w", title, err)
		}
	}

	if footer != nil {
		table.Footer(footer)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render %s: %w", title, err)
	}

	return nil
}

func dailyTotals(daily []utilization.DailyAggregate) []string {
	if len(daily) == 0 {
		return nil
	}

	var total, distinct, cached uint64

	minutes := decimal.Zero

	for _, a := range daily {
		total += a.TotalQueries
		distinct += a.DistinctQueries
		cached += a.CachedQueries
		minutes = minutes.Add(decimal.NewFromFloat(a.RunningMinutes))
	}

	return []string{
		"Total",
		strconv.FormatUint(total, 10),
		strconv.FormatUint(distinct, 10),
		strconv.FormatUint(cached, 10),
		minutes.String(),
	}
}
