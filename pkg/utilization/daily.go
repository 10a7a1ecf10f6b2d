package utilization

import "github.com/shopspring/decimal"

// DailyAggregator sums window records per start day. Days come out in the
// order they were first seen.
type DailyAggregator struct {
	order []Day
	sums  map[Day]*dailySum
}

type dailySum struct {
	total    uint64
	distinct uint64
	cached   uint64
	minutes  decimal.Decimal
}

// NewDailyAggregator creates an empty aggregator
func NewDailyAggregator() *DailyAggregator {
	return &DailyAggregator{
		sums: make(map[Day]*dailySum),
	}
}

// Add folds one window into its day
func (a *DailyAggregator) Add(rec WindowRecord) {
	sum, ok := a.sums[rec.Day]
	if !ok {
		sum = &dailySum{}
		a.sums[rec.Day] = sum
		a.order = append(a.order, rec.Day)
	}

	sum.total += rec.TotalQueries
	sum.distinct += rec.DistinctQueries
	sum.cached += rec.CachedQueries
	sum.minutes = sum.minutes.Add(decimal.NewFromFloat(rec.RunningMinutes))
}

// Aggregates returns one row per day
func (a *DailyAggregator) Aggregates() []DailyAggregate {
	out := make([]DailyAggregate, 0, len(a.order))

	for _, d := range a.order {
		sum := a.sums[d]
		out = append(out, DailyAggregate{
			Day:             d,
			TotalQueries:    sum.total,
			DistinctQueries: sum.distinct,
			CachedQueries:   sum.cached,
			RunningMinutes:  sum.minutes.InexactFloat64(),
		})
	}

	return out
}

// AggregateDaily groups records by day
func AggregateDaily(records []WindowRecord) []DailyAggregate {
	agg := NewDailyAggregator()
	for _, rec := range records {
		agg.Add(rec)
	}

	return agg.Aggregates()
}
