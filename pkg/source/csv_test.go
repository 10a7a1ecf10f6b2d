package source

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethpandaops/warehouse-utilization/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSVSource(t *testing.T, cfg CSVConfig) *CSVSource {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	if cfg.Path == "" {
		cfg.Path = "unused.csv"
	}

	src, err := NewCSVSource(logger, cfg, testutil.Chicago(t))
	require.NoError(t, err)

	return src
}

func TestCSVConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CSVConfig
		wantErr error
	}{
		{name: "valid", cfg: CSVConfig{Path: "a.csv"}},
		{name: "tab separated", cfg: CSVConfig{Path: "a.tsv", Comma: "\t"}},
		{name: "missing path", cfg: CSVConfig{}, wantErr: ErrPathRequired},
		{name: "multi character comma", cfg: CSVConfig{Path: "a.csv", Comma: ";;"}, wantErr: ErrInvalidComma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestCSVSource_Events(t *testing.T) {
	loc := testutil.Chicago(t)
	path := testutil.WriteCSV(t,
		`TenantId,TimeGenerated [UTC],statement_s`,
		`t1,2024-03-14 09:05:00,"  select a  "`,
		`t1,2024-03-14 09:00:00,"INSERT INTO t VALUES ('x, y')"`,
		`t1,2024-03-14 09:06:00,`,
		`t1,2024-03-14 09:07:00`,
	)

	src := newCSVSource(t, CSVConfig{Path: path})
	assert.Equal(t, "csv", src.Name())

	events, err := src.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, testutil.At(t, loc, "2024-03-14 09:05"), events[0].Timestamp)
	assert.Equal(t, "SELECT A", events[0].Statement)
	assert.Equal(t, "INSERT INTO T VALUES ('X, Y')", events[1].Statement, "file order is kept")
	assert.Equal(t, "", events[2].Statement)
	assert.Equal(t, "", events[3].Statement, "short rows have no statement")
}

func TestCSVSource_CustomColumns(t *testing.T) {
	src := newCSVSource(t, CSVConfig{
		TimestampColumn:  "ts",
		StatementColumn:  "sql",
		Comma:            ";",
		TimestampLayouts: []string{"02.01.2006 15:04"},
	})

	events, err := src.Decode(context.Background(), strings.NewReader("\uFEFFsql;ts\nselect 1;14.03.2024 09:00\n"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "SELECT 1", events[0].Statement)
	assert.Equal(t, 9, events[0].Timestamp.Hour())
}

func TestCSVSource_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		src := newCSVSource(t, CSVConfig{Path: "/nonexistent/query_data.csv"})

		_, err := src.Events(context.Background())
		require.Error(t, err)
	})

	t.Run("missing timestamp column", func(t *testing.T) {
		src := newCSVSource(t, CSVConfig{})

		_, err := src.Decode(context.Background(), strings.NewReader("time,statement_s\n"))
		require.ErrorIs(t, err, ErrColumnNotFound)
		assert.Contains(t, err.Error(), "TimeGenerated [UTC]")
	})

	t.Run("missing statement column", func(t *testing.T) {
		src := newCSVSource(t, CSVConfig{})

		_, err := src.Decode(context.Background(), strings.NewReader("TimeGenerated [UTC]\n"))
		require.ErrorIs(t, err, ErrColumnNotFound)
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		src := newCSVSource(t, CSVConfig{})

		_, err := src.Decode(context.Background(), strings.NewReader(
			"TimeGenerated [UTC],statement_s\n2024-03-14 09:00:00,SELECT 1\nnot a time,SELECT 2\n"))
		require.ErrorIs(t, err, ErrMalformedInput)

		var malformed *MalformedInputError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, 3, malformed.Line)
		assert.Equal(t, "not a time", malformed.Value)
		assert.Equal(t, "TimeGenerated [UTC]", malformed.Column)
	})

	t.Run("nonexistent local time", func(t *testing.T) {
		src := newCSVSource(t, CSVConfig{})

		_, err := src.Decode(context.Background(), strings.NewReader(
			"TimeGenerated [UTC],statement_s\n2024-03-10 01:55:00,SELECT 1\n2024-03-10 02:10:00,SELECT 2\n"))
		require.ErrorIs(t, err, ErrMalformedInput)
		require.ErrorIs(t, err, ErrNonexistentLocalTime)

		var malformed *MalformedInputError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, 3, malformed.Line)
		assert.Equal(t, "2024-03-10 02:10:00", malformed.Value)
	})

	t.Run("cancelled", func(t *testing.T) {
		src := newCSVSource(t, CSVConfig{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := src.Decode(ctx, strings.NewReader("TimeGenerated [UTC],statement_s\n2024-03-14 09:00:00,SELECT 1\n"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCSVSource_EmptyInput(t *testing.T) {
	src := newCSVSource(t, CSVConfig{})

	for name, input := range map[string]string{"no header": "", "header only": "TimeGenerated [UTC],statement_s\n"} {
		t.Run(name, func(t *testing.T) {
			events, err := src.Decode(context.Background(), strings.NewReader(input))
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}

func TestCSVSource_LocalizesNaiveTimestamps(t *testing.T) {
	src := newCSVSource(t, CSVConfig{})

	events, err := src.Decode(context.Background(), strings.NewReader(
		"TimeGenerated [UTC],statement_s\n2024-03-14 09:00:00,SELECT 1\n2024-03-14T14:00:00Z,SELECT 2\n"))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.True(t, events[0].Timestamp.Equal(events[1].Timestamp))
	assert.Equal(t, time.Date(2024, 3, 14, 14, 0, 0, 0, time.UTC), events[0].Timestamp.UTC())
}
