package report

import (
	"testing"
	"time"

	"github.com/ethpandaops/warehouse-utilization/internal/testutil"
	"github.com/ethpandaops/warehouse-utilization/pkg/utilization"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return logger
}

// sampleReport holds one billed window, one cached-only window and their daily rollup.
func sampleReport(t *testing.T) *utilization.Report {
	t.Helper()

	loc := testutil.Chicago(t)
	at := func(v string) time.Time { return testutil.At(t, loc, v) }

	runStart := at("2024-03-14 09:00")
	runEnd := at("2024-03-14 09:15")

	return &utilization.Report{
		RunID:       "run-1",
		Location:    loc,
		IdleTimeout: 10 * time.Minute,
		Windows: []utilization.WindowRecord{
			{
				Day:             utilization.DayOf(at("2024-03-14 09:00")),
				WindowStart:     at("2024-03-14 09:00"),
				WindowEnd:       at("2024-03-14 09:15"),
				TotalQueries:    3,
				DistinctQueries: 2,
				CachedQueries:   1,
				RunningStart:    &runStart,
				RunningEnd:      &runEnd,
				RunningMinutes:  15,
			},
			{
				Day:           utilization.DayOf(at("2024-03-14 13:30")),
				WindowStart:   at("2024-03-14 13:30"),
				WindowEnd:     at("2024-03-14 13:40"),
				TotalQueries:  1,
				CachedQueries: 1,
			},
		},
		Daily: []utilization.DailyAggregate{
			{
				Day:             utilization.DayOf(at("2024-03-14 09:00")),
				TotalQueries:    4,
				DistinctQueries: 2,
				CachedQueries:   2,
				RunningMinutes:  15,
			},
		},
	}
}
