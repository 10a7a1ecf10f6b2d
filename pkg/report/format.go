// Package report renders utilization reports to workbooks, files, terminals and ClickHouse
package report

import (
	"strconv"
	"time"

	"github.com/ethpandaops/warehouse-utilization/pkg/utilization"
)

// InstantLayout formats every instant in tabular output
const InstantLayout = "01/02/2006 03:04 PM MST"

// Output table names
const (
	WindowsTable = "warehouse_utilization"
	DailyTable   = "daily_aggregation"
)

// WindowColumns is the header of the window table
//
//nolint:gochecknoglobals // Read-only column layout
var WindowColumns = []string{
	"Day",
	"window_start",
	"window_end",
	"total_queries",
	"distinct_queries",
	"cached_queries",
	"running_start",
	"running_end",
	"running_minutes",
}

// DailyColumns is the header of the daily table
//
//nolint:gochecknoglobals // Read-only column layout
var DailyColumns = []string{
	"Day",
	"total_queries",
	"distinct_queries",
	"cached_queries",
	"running_minutes",
}

// FormatInstant formats t in its own location
func FormatInstant(t time.Time) string {
	return t.Format(InstantLayout)
}

// FormatOptionalInstant returns "" for nil
func FormatOptionalInstant(t *time.Time) string {
	if t == nil {
		return ""
	}

	return FormatInstant(*t)
}

// FormatMinutes prints minutes with the shortest exact representation
func FormatMinutes(minutes float64) string {
	return strconv.FormatFloat(minutes, 'f', -1, 64)
}

// WindowStrings renders one window record as text cells
func WindowStrings(r utilization.WindowRecord) []string {
	return []string{
		r.Day.String(),
		FormatInstant(r.WindowStart),
		FormatInstant(r.WindowEnd),
		strconv.FormatUint(r.TotalQueries, 10),
		strconv.FormatUint(r.DistinctQueries, 10),
		strconv.FormatUint(r.CachedQueries, 10),
		FormatOptionalInstant(r.RunningStart),
		FormatOptionalInstant(r.RunningEnd),
		FormatMinutes(r.RunningMinutes),
	}
}

// DailyStrings renders one daily aggregate as text cells
func DailyStrings(a utilization.DailyAggregate) []string {
	return []string{
		a.Day.String(),
		strconv.FormatUint(a.TotalQueries, 10),
		strconv.FormatUint(a.DistinctQueries, 10),
		strconv.FormatUint(a.CachedQueries, 10),
		FormatMinutes(a.RunningMinutes),
	}
}

// windowValues keeps counts and minutes numeric for spreadsheet cells
func windowValues(r utilization.WindowRecord) []interface{} {
	return []interface{}{
		r.Day.String(),
		FormatInstant(r.WindowStart),
		FormatInstant(r.WindowEnd),
		r.TotalQueries,
		r.DistinctQueries,
		r.CachedQueries,
		FormatOptionalInstant(r.RunningStart),
		FormatOptionalInstant(r.RunningEnd),
		r.RunningMinutes,
	}
}

func dailyValues(a utilization.DailyAggregate) []interface{} {
	return []interface{}{
		a.Day.String(),
		a.TotalQueries,
		a.DistinctQueries,
		a.CachedQueries,
		a.RunningMinutes,
	}
}
