// Package source loads query events for the utilization scan
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ethpandaops/warehouse-utilization/pkg/querylog"
	"github.com/sirupsen/logrus"
)

// CSVConfig describes a CSV query log export
type CSVConfig struct {
	Path            string `yaml:"path"`
	TimestampColumn string `yaml:"timestampColumn" default:"TimeGenerated [UTC]"`
	StatementColumn string `yaml:"statementColumn" default:"statement_s"`
	// TimestampLayouts overrides DefaultTimestampLayouts
	TimestampLayouts []string `yaml:"timestampLayouts"`
	Comma            string   `yaml:"comma" default:","`
}

// Validate checks if the configuration is valid
func (c *CSVConfig) Validate() error {
	if c.Path == "" {
		return ErrPathRequired
	}

	if c.Comma != "" && utf8.RuneCountInString(c.Comma) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidComma, c.Comma)
	}

	return nil
}

// CSVSource reads events from a CSV file
type CSVSource struct {
	log logrus.FieldLogger
	cfg CSVConfig
	loc *time.Location
}

// NewCSVSource creates a CSV source. Timestamps are localized to loc.
func NewCSVSource(log logrus.FieldLogger, cfg CSVConfig, loc *time.Location) (*CSVSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.TimestampColumn == "" {
		cfg.TimestampColumn = "TimeGenerated [UTC]"
	}

	if cfg.StatementColumn == "" {
		cfg.StatementColumn = "statement_s"
	}

	return &CSVSource{
		log: log.WithFields(logrus.Fields{"component": "csv-source", "path": cfg.Path}),
		cfg: cfg,
		loc: loc,
	}, nil
}

// Name implements utilization.Source
func (s *CSVSource) Name() string {
	return "csv"
}

// Events reads the whole file
func (s *CSVSource) Events(ctx context.Context) ([]querylog.Event, error) {
	f, err := os.Open(s.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.cfg.Path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.log.WithError(closeErr).Debug("Failed to close csv file")
		}
	}()

	return s.Decode(ctx, f)
}

// Decode reads events from r. The first record must be a header naming the
// timestamp and statement columns. Missing statement cells become empty statements.
func (s *CSVSource) Decode(ctx context.Context, r io.Reader) ([]querylog.Event, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	if s.cfg.Comma != "" {
		reader.Comma, _ = utf8.DecodeRuneInString(s.cfg.Comma)
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		s.log.Warn("CSV input is empty")
		return []querylog.Event{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	tsIdx, stmtIdx, err := s.columns(header)
	if err != nil {
		return nil, err
	}

	events := make([]querylog.Event, 0)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if tsIdx >= len(record) {
			return nil, &MalformedInputError{Line: line, Column: s.cfg.TimestampColumn, Err: errEmptyTimestamp}
		}

		ts, err := ParseTimestamp(record[tsIdx], s.cfg.TimestampLayouts, s.loc)
		if err != nil {
			return nil, &MalformedInputError{Line: line, Column: s.cfg.TimestampColumn, Value: record[tsIdx], Err: err}
		}

		var statement string
		if stmtIdx < len(record) {
			statement = record[stmtIdx]
		}

		events = append(events, querylog.NewEvent(ts, statement))
	}

	s.log.WithField("events", len(events)).Info("Loaded query events")

	return events, nil
}

func (s *CSVSource) columns(header []string) (tsIdx, stmtIdx int, err error) {
	tsIdx, stmtIdx = -1, -1

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))

		switch name {
		case s.cfg.TimestampColumn:
			tsIdx = i
		case s.cfg.StatementColumn:
			stmtIdx = i
		}
	}

	if tsIdx < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrColumnNotFound, s.cfg.TimestampColumn)
	}

	if stmtIdx < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrColumnNotFound, s.cfg.StatementColumn)
	}

	return tsIdx, stmtIdx, nil
}
