package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/ethpandaops/warehouse-utilization/pkg/clickhouse"
	"github.com/ethpandaops/warehouse-utilization/pkg/report"
	"github.com/ethpandaops/warehouse-utilization/pkg/source"
	"github.com/ethpandaops/warehouse-utilization/pkg/utilization"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Source types
const (
	SourceCSV        = "csv"
	SourceClickHouse = "clickhouse"
)

var (
	// ErrClickHouseURLRequired is returned when a ClickHouse source or sink has no URL
	ErrClickHouseURLRequired = errors.New("clickhouse URL is required")
	// ErrUnknownSource is returned for an unsupported source type
	ErrUnknownSource = errors.New("unknown source type")
	// ErrNoSinks is returned when every sink is disabled
	ErrNoSinks = errors.New("at least one sink must be enabled")
)

// Config is the analyze command configuration
type Config struct {
	// Logging level
	Logging string `yaml:"logging" default:"info"`

	Utilization utilization.Config `yaml:"utilization"`
	Source      SourceConfig       `yaml:"source"`
	// ClickHouse connection shared by the ClickHouse source and sink
	ClickHouse clickhouse.Config `yaml:"clickhouse"`
	Sinks      SinksConfig       `yaml:"sinks"`
	Metrics    MetricsConfig     `yaml:"metrics"`
}

// SourceConfig selects where query events are read from
type SourceConfig struct {
	Type       string                  `yaml:"type" default:"csv"`
	CSV        source.CSVConfig        `yaml:"csv"`
	ClickHouse source.ClickHouseConfig `yaml:"clickhouse"`
}

// SinksConfig selects where the report is written
type SinksConfig struct {
	XLSX struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"query_data_analysis.xlsx"`
	} `yaml:"xlsx"`
	// CSV writes both tables into Dir when set
	CSV struct {
		Dir string `yaml:"dir"`
	} `yaml:"csv"`
	Console    bool `yaml:"console"`
	ClickHouse bool `yaml:"clickhouse"`
}

// MetricsConfig controls how run metrics are exported
type MetricsConfig struct {
	// Textfile is written after the run for the node exporter textfile collector
	Textfile string `yaml:"textfile"`
	// Addr serves /metrics while the run is in progress
	Addr string `yaml:"addr"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Logging); err != nil {
		return fmt.Errorf("invalid logging level: %w", err)
	}

	if err := c.Utilization.Validate(); err != nil {
		return err
	}

	switch c.Source.Type {
	case SourceCSV:
		if err := c.Source.CSV.Validate(); err != nil {
			return fmt.Errorf("invalid csv source: %w", err)
		}
	case SourceClickHouse:
		if c.ClickHouse.URL == "" {
			return ErrClickHouseURLRequired
		}

		if err := c.Source.ClickHouse.Validate(); err != nil {
			return fmt.Errorf("invalid clickhouse source: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source.Type)
	}

	if c.Sinks.XLSX.Enabled && c.Sinks.XLSX.Path == "" {
		return fmt.Errorf("invalid xlsx sink: %w", report.ErrPathRequired)
	}

	if c.Sinks.ClickHouse && c.ClickHouse.URL == "" {
		return ErrClickHouseURLRequired
	}

	if !c.Sinks.XLSX.Enabled && c.Sinks.CSV.Dir == "" && !c.Sinks.Console && !c.Sinks.ClickHouse {
		return ErrNoSinks
	}

	return nil
}

// usesClickHouse reports whether any component needs a ClickHouse client
func (c *Config) usesClickHouse() bool {
	return c.Source.Type == SourceClickHouse || c.Sinks.ClickHouse
}

// LoadConfig loads configuration from a YAML file. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	config := &Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}

		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return config, nil
}
