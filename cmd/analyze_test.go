package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethpandaops/warehouse-utilization/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return logger
}

func defaultConfig(t *testing.T) *Config {
	t.Helper()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	return cfg
}

func TestApplyFlags(t *testing.T) {
	flags := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	registerAnalyzeFlags(flags)

	require.NoError(t, flags.Parse([]string{
		"--input", "query_data.csv",
		"-o", "out/report.xlsx",
		"--csv-dir", "out",
		"--console",
		"--idle-timeout", "5m",
		"--timezone", "UTC",
		"--from", "2024-03-14T00:00:00Z",
		"--metrics-textfile", "wu.prom",
	}))

	cfg := defaultConfig(t)
	require.NoError(t, applyFlags(flags, cfg))

	assert.Equal(t, SourceCSV, cfg.Source.Type)
	assert.Equal(t, "query_data.csv", cfg.Source.CSV.Path)
	assert.True(t, cfg.Sinks.XLSX.Enabled)
	assert.Equal(t, "out/report.xlsx", cfg.Sinks.XLSX.Path)
	assert.Equal(t, "out", cfg.Sinks.CSV.Dir)
	assert.True(t, cfg.Sinks.Console)
	assert.Equal(t, 5*time.Minute, cfg.Utilization.IdleTimeout)
	assert.Equal(t, "UTC", cfg.Utilization.Timezone)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), cfg.Source.ClickHouse.From)
	assert.True(t, cfg.Source.ClickHouse.To.IsZero())
	assert.Equal(t, "wu.prom", cfg.Metrics.Textfile)
	require.NoError(t, cfg.Validate())
}

func TestApplyFlags_UnsetFlagsKeepFileValues(t *testing.T) {
	flags := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	registerAnalyzeFlags(flags)
	require.NoError(t, flags.Parse([]string{"--no-xlsx"}))

	cfg := defaultConfig(t)
	cfg.Utilization.IdleTimeout = 3 * time.Minute
	cfg.Sinks.Console = true

	require.NoError(t, applyFlags(flags, cfg))

	assert.Equal(t, 3*time.Minute, cfg.Utilization.IdleTimeout)
	assert.True(t, cfg.Sinks.Console)
	assert.False(t, cfg.Sinks.XLSX.Enabled)
}

func TestApplyFlags_InvalidTime(t *testing.T) {
	flags := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	registerAnalyzeFlags(flags)
	require.NoError(t, flags.Parse([]string{"--to", "tomorrow"}))

	err := applyFlags(flags, defaultConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--to")
}

func TestRunAnalysis_CSV(t *testing.T) {
	input := testutil.WriteCSV(t,
		`TimeGenerated [UTC],statement_s`,
		`2024-03-14 09:00:00,SELECT A`,
		`2024-03-14 09:05:00,select a`,
		`2024-03-14 09:08:00,SELECT B`,
		`2024-03-14 13:30:00,SELECT B`,
	)
	out := t.TempDir()

	cfg := defaultConfig(t)
	cfg.Source.CSV.Path = input
	cfg.Sinks.XLSX.Path = filepath.Join(out, "query_data_analysis.xlsx")
	cfg.Sinks.CSV.Dir = out
	cfg.Sinks.Console = true
	cfg.Metrics.Textfile = filepath.Join(out, "wu.prom")
	require.NoError(t, cfg.Validate())

	var console bytes.Buffer

	result, err := runAnalysis(context.Background(), quietLogger(), cfg, &console)
	require.NoError(t, err)

	require.Len(t, result.Windows, 2)
	assert.Equal(t, uint64(3), result.Windows[0].TotalQueries)
	assert.Equal(t, uint64(2), result.Windows[0].DistinctQueries)
	assert.Equal(t, uint64(1), result.Windows[1].CachedQueries, "cache survives the idle gap")
	require.Len(t, result.Daily, 1)
	assert.InDelta(t, 18.0, result.Daily[0].RunningMinutes, 1e-9)

	f, err := excelize.OpenFile(cfg.Sinks.XLSX.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	assert.Equal(t, []string{"warehouse_utilization", "daily_aggregation"}, f.GetSheetList())

	assert.FileExists(t, filepath.Join(out, "warehouse_utilization.csv"))
	assert.FileExists(t, filepath.Join(out, "daily_aggregation.csv"))
	assert.Contains(t, console.String(), "03/14/2024 09:00 AM CDT")

	metrics, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "wu_events_scanned_total")
}

func TestRunAnalysis_ClickHouse(t *testing.T) {
	fake := testutil.NewFakeClickHouse(t)
	fake.RespondRows(t, "system.query_log",
		map[string]interface{}{"event_time_us": "1710424800000000", "query": "SELECT 1"},
		map[string]interface{}{"event_time_us": "1710425100000000", "query": "SELECT 1"},
	)

	cfg := defaultConfig(t)
	cfg.Source.Type = SourceClickHouse
	cfg.ClickHouse.URL = fake.URL
	cfg.Sinks.XLSX.Enabled = false
	cfg.Sinks.ClickHouse = true
	require.NoError(t, cfg.Validate())

	result, err := runAnalysis(context.Background(), quietLogger(), cfg, &bytes.Buffer{})
	require.NoError(t, err)

	require.Len(t, result.Windows, 1)
	assert.Equal(t, uint64(2), result.Windows[0].TotalQueries)
	assert.Equal(t, uint64(1), result.Windows[0].CachedQueries)

	var inserts []string
	for _, q := range fake.Queries() {
		if strings.HasPrefix(q, "INSERT INTO") {
			inserts = append(inserts, q)
		}
	}

	require.Len(t, inserts, 2)
	assert.Contains(t, inserts[0], "`utilization`.`warehouse_utilization`")
	assert.Contains(t, inserts[0], result.RunID)
}

func TestRunAnalysis_SourceError(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Source.CSV.Path = filepath.Join(t.TempDir(), "missing.csv")
	cfg.Sinks.XLSX.Path = filepath.Join(t.TempDir(), "out.xlsx")

	_, err := runAnalysis(context.Background(), quietLogger(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.NoFileExists(t, cfg.Sinks.XLSX.Path)
}
