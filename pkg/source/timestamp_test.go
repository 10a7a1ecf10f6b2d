package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	wall := time.Date(2024, 3, 14, 9, 5, 1, 0, loc)

	tests := []struct {
		name     string
		value    string
		expected time.Time
	}{
		{name: "naive iso", value: "2024-03-14 09:05:01", expected: wall},
		{name: "naive iso with T", value: "2024-03-14T09:05:01", expected: wall},
		{name: "fractional seconds", value: "2024-03-14 09:05:01.250", expected: wall.Add(250 * time.Millisecond)},
		{name: "log analytics export", value: "3/14/2024, 9:05:01.000 AM", expected: wall},
		{name: "surrounding whitespace", value: "  2024-03-14 09:05:01 ", expected: wall},
		{name: "rfc3339 utc is converted", value: "2024-03-14T14:05:01Z", expected: wall},
		{name: "explicit offset is converted", value: "2024-03-14T15:05:01+01:00", expected: wall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.value, nil, loc)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(ts), "expected %s, got %s", tt.expected, ts)
			assert.Equal(t, loc, ts.Location())
		})
	}
}

func TestParseTimestamp_Errors(t *testing.T) {
	for _, value := range []string{"", "   ", "yesterday", "2024-13-45 99:00:00"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseTimestamp(value, nil, time.UTC)
			require.Error(t, err)
		})
	}
}

func TestParseTimestamp_CustomLayouts(t *testing.T) {
	ts, err := ParseTimestamp("14.03.2024 09:05", []string{"02.01.2006 15:04"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 14, 9, 5, 0, 0, time.UTC), ts)

	_, err = ParseTimestamp("2024-03-14 09:05:01", []string{"02.01.2006 15:04"}, time.UTC)
	require.Error(t, err, "custom layouts replace the defaults")
}

func TestParseTimestamp_DaylightSavingTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	t.Run("spring forward gap is rejected", func(t *testing.T) {
		for _, value := range []string{"2024-03-10 02:30:00", "2024-03-10T02:00:00", "3/10/2024, 2:59:59.000 AM"} {
			_, err := ParseTimestamp(value, nil, loc)
			require.ErrorIs(t, err, ErrNonexistentLocalTime, value)
		}
	})

	t.Run("times around the gap are kept", func(t *testing.T) {
		before, err := ParseTimestamp("2024-03-10 01:59:59", nil, loc)
		require.NoError(t, err)
		assert.Equal(t, 1, before.Hour())

		after, err := ParseTimestamp("2024-03-10 03:00:00", nil, loc)
		require.NoError(t, err)
		assert.Equal(t, 3, after.Hour())
		assert.Equal(t, time.Second, after.Sub(before))
	})

	t.Run("repeated fall back hour takes the first occurrence", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-11-03 01:30:00", nil, loc)
		require.NoError(t, err)

		name, offset := ts.Zone()
		assert.Equal(t, "CDT", name)
		assert.Equal(t, -5*60*60, offset)
		assert.Equal(t, time.Date(2024, 11, 3, 6, 30, 0, 0, time.UTC), ts.UTC())
	})

	t.Run("offset timestamps inside the gap are converted", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-03-10T08:30:00Z", nil, loc)
		require.NoError(t, err)
		assert.Equal(t, 3, ts.Hour())
	})

	t.Run("utc zone has no gaps", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-03-10 02:30:00", nil, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, 2, ts.Hour())
	})
}
