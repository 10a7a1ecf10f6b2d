package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethpandaops/warehouse-utilization/pkg/clickhouse"
	"github.com/ethpandaops/warehouse-utilization/pkg/querylog"
	"github.com/ethpandaops/warehouse-utilization/pkg/rendering"
	"github.com/sirupsen/logrus"
)

// DefaultQueryLogTemplate reads finished queries from system.query_log.
// Custom templates must return the columns event_time_us (unix microseconds) and query.
const DefaultQueryLogTemplate = `SELECT
    toUnixTimestamp64Micro(event_time_microseconds) AS event_time_us,
    query
FROM {{ .table }}
WHERE type = 'QueryFinish'
{{- if .from }}
    AND event_time >= toDateTime('{{ .from }}', 'UTC')
{{- end }}
{{- if .to }}
    AND event_time < toDateTime('{{ .to }}', 'UTC')
{{- end }}
{{- if .databases }}
    AND hasAny(databases, [{{ range $i, $db := .databases }}{{ if $i }}, {{ end }}{{ $db | squote }}{{ end }}])
{{- end }}
ORDER BY event_time_microseconds
{{- if .limit }}
LIMIT {{ .limit }}
{{- end }}`

// ClickHouseConfig describes a query log read from ClickHouse
type ClickHouseConfig struct {
	// Query is a text/template with Sprig functions; DefaultQueryLogTemplate when empty
	Query     string    `yaml:"query"`
	Table     string    `yaml:"table" default:"system.query_log"`
	From      time.Time `yaml:"from"`
	To        time.Time `yaml:"to"`
	Databases []string  `yaml:"databases"`
	Limit     int       `yaml:"limit"`
}

// Validate checks if the configuration is valid
func (c *ClickHouseConfig) Validate() error {
	if !c.From.IsZero() && !c.To.IsZero() && !c.From.Before(c.To) {
		return fmt.Errorf("%w: %s >= %s", ErrInvalidTimeSpan, c.From, c.To)
	}

	return nil
}

// queryLogRow is one row of the rendered query. json.Number accepts both the
// quoted and unquoted 64-bit integer output of ClickHouse.
type queryLogRow struct {
	EventTimeMicros json.Number `json:"event_time_us"`
	Query           *string     `json:"query"`
}

// ClickHouseSource reads events from a ClickHouse query log table
type ClickHouseSource struct {
	log    logrus.FieldLogger
	client clickhouse.ClientInterface
	engine *rendering.TemplateEngine
	cfg    ClickHouseConfig
	loc    *time.Location
}

// NewClickHouseSource creates a ClickHouse source. Timestamps are converted to loc.
func NewClickHouseSource(log logrus.FieldLogger, client clickhouse.ClientInterface, cfg ClickHouseConfig, loc *time.Location) (*ClickHouseSource, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Query == "" {
		cfg.Query = DefaultQueryLogTemplate
	}

	if cfg.Table == "" {
		cfg.Table = "system.query_log"
	}

	return &ClickHouseSource{
		log:    log.WithFields(logrus.Fields{"component": "clickhouse-source", "table": cfg.Table}),
		client: client,
		engine: rendering.NewTemplateEngine(),
		cfg:    cfg,
		loc:    loc,
	}, nil
}

// Name implements utilization.Source
func (s *ClickHouseSource) Name() string {
	return "clickhouse"
}

// Query renders the configured template
func (s *ClickHouseSource) Query() (string, error) {
	return s.engine.Render(s.cfg.Query, s.engine.BuildVariables(rendering.QueryWindow{
		Table:     s.cfg.Table,
		From:      s.cfg.From,
		To:        s.cfg.To,
		Databases: s.cfg.Databases,
		Limit:     s.cfg.Limit,
	}))
}

// Events runs the rendered query and converts every row
func (s *ClickHouseSource) Events(ctx context.Context) ([]querylog.Event, error) {
	query, err := s.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to render query log template: %w", err)
	}

	var rows []queryLogRow
	if err := s.client.QueryMany(ctx, query, &rows); err != nil {
		return nil, fmt.Errorf("failed to read query log: %w", err)
	}

	events := make([]querylog.Event, 0, len(rows))

	for i, row := range rows {
		micros, err := row.EventTimeMicros.Int64()
		if err != nil {
			return nil, &MalformedInputError{Line: i + 1, Column: "event_time_us", Value: row.EventTimeMicros.String(), Err: err}
		}

		var statement string
		if row.Query != nil {
			statement = *row.Query
		}

		events = append(events, querylog.NewEvent(time.UnixMicro(micros).In(s.loc), statement))
	}

	s.log.WithField("events", len(events)).Info("Loaded query events")

	return events, nil
}
