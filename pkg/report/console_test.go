package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/ethpandaops/warehouse-utilization/pkg/utilization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSink_Write(t *testing.T) {
	var buf bytes.Buffer

	sink := NewConsoleSink(quietLogger(), &buf)
	assert.Equal(t, "console", sink.Name())

	require.NoError(t, sink.Write(context.Background(), sampleReport(t)))

	out := buf.String()
	assert.Contains(t, out, "warehouse_utilization (2 rows)")
	assert.Contains(t, out, "daily_aggregation (1 rows)")
	assert.Contains(t, out, "03/14/2024 09:00 AM CDT")
	assert.Contains(t, out, "03/14/2024 01:40 PM CDT")
	assert.Contains(t, out, "2024-03-14")
}

func TestConsoleSink_EmptyReport(t *testing.T) {
	var buf bytes.Buffer

	sink := NewConsoleSink(quietLogger(), &buf)
	require.NoError(t, sink.Write(context.Background(), &utilization.Report{}))

	assert.Contains(t, buf.String(), "warehouse_utilization (0 rows)")
	assert.Contains(t, buf.String(), "daily_aggregation (0 rows)")
}

func TestDailyTotals(t *testing.T) {
	assert.Nil(t, dailyTotals(nil))

	totals := dailyTotals([]utilization.DailyAggregate{
		{TotalQueries: 4, DistinctQueries: 2, CachedQueries: 2, RunningMinutes: 0.1},
		{TotalQueries: 1, DistinctQueries: 1, RunningMinutes: 0.2},
	})

	assert.Equal(t, []string{"Total", "5", "3", "2", "0.3"}, totals)
}
