package observability

import (
	"os"
	"path/filepath"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCacheLookup(t *testing.T) {
	hits := promtest.ToFloat64(StatementCacheLookups.WithLabelValues("hit"))
	misses := promtest.ToFloat64(StatementCacheLookups.WithLabelValues("miss"))

	RecordCacheLookup(true)
	RecordCacheLookup(true)
	RecordCacheLookup(false)

	assert.InDelta(t, hits+2, promtest.ToFloat64(StatementCacheLookups.WithLabelValues("hit")), 1e-9)
	assert.InDelta(t, misses+1, promtest.ToFloat64(StatementCacheLookups.WithLabelValues("miss")), 1e-9)
}

func TestRecordWindow(t *testing.T) {
	windows := promtest.ToFloat64(WindowsEmitted)
	minutes := promtest.ToFloat64(RunningMinutes)

	RecordWindow(12.5)
	RecordWindow(0)

	assert.InDelta(t, windows+2, promtest.ToFloat64(WindowsEmitted), 1e-9)
	assert.InDelta(t, minutes+12.5, promtest.ToFloat64(RunningMinutes), 1e-9)
}

func TestRecordSinkWrite(t *testing.T) {
	before := promtest.ToFloat64(SinkWrites.WithLabelValues("xlsx", "error"))

	RecordSinkWrite("xlsx", "error", 0.01)

	assert.InDelta(t, before+1, promtest.ToFloat64(SinkWrites.WithLabelValues("xlsx", "error")), 1e-9)
}

func TestWriteTextfile(t *testing.T) {
	RecordScan(3, 0.002)

	path := filepath.Join(t.TempDir(), "wu.prom")
	require.NoError(t, WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "wu_events_scanned_total")
	assert.Contains(t, string(content), "wu_scan_duration_seconds_bucket")

	require.Error(t, WriteTextfile(filepath.Join(t.TempDir(), "missing", "wu.prom")))
}
