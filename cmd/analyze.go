package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethpandaops/warehouse-utilization/pkg/clickhouse"
	"github.com/ethpandaops/warehouse-utilization/pkg/observability"
	"github.com/ethpandaops/warehouse-utilization/pkg/report"
	"github.com/ethpandaops/warehouse-utilization/pkg/source"
	"github.com/ethpandaops/warehouse-utilization/pkg/utilization"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// analyzeCmd runs one utilization analysis
//
//nolint:gochecknoglobals // Cobra commands are typically global
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Reconstruct warehouse activity windows from a query log",
	Long: `Analyze reads a query log, splits it into activity windows separated by
idle gaps longer than the auto-suspend timeout and reports how long the
warehouse was running for each window and each day.

Examples:
  # Analyze a CSV export into query_data_analysis.xlsx
  warehouse-utilization analyze --input query_data.csv

  # Read system.query_log for one day and print the tables
  warehouse-utilization analyze --source clickhouse --from 2024-03-14T00:00:00Z --to 2024-03-15T00:00:00Z --console`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	registerAnalyzeFlags(analyzeCmd.Flags())
}

func registerAnalyzeFlags(flags *pflag.FlagSet) {
	flags.String("source", SourceCSV, "event source (csv, clickhouse)")
	flags.StringP("input", "i", "", "CSV query log export")
	flags.StringP("output", "o", report.DefaultXLSXPath, "XLSX workbook path")
	flags.Bool("no-xlsx", false, "do not write the XLSX workbook")
	flags.String("csv-dir", "", "also write both tables as CSV files into this directory")
	flags.Bool("console", false, "also print both tables")
	flags.Bool("clickhouse-sink", false, "also insert both tables into ClickHouse")
	flags.String("clickhouse-url", "", "ClickHouse HTTP URL")
	flags.Duration("idle-timeout", utilization.DefaultIdleTimeout, "auto-suspend idle timeout")
	flags.String("timezone", utilization.DefaultTimezone, "IANA timezone used for localization and days")
	flags.String("from", "", "ClickHouse source lower bound (RFC3339)")
	flags.String("to", "", "ClickHouse source upper bound (RFC3339)")
	flags.String("metrics-textfile", "", "write run metrics to this file")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true

	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if !rootCmd.PersistentFlags().Changed("log-level") {
		if level, parseErr := logrus.ParseLevel(cfg.Logging); parseErr == nil {
			logger.SetLevel(level)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = runAnalysis(ctx, logger, cfg, cmd.OutOrStdout())

	return err
}

// applyFlags overrides file configuration with explicitly set flags
func applyFlags(flags *pflag.FlagSet, cfg *Config) error {
	var err error

	if flags.Changed("input") {
		cfg.Source.Type = SourceCSV
		cfg.Source.CSV.Path, _ = flags.GetString("input")
	}

	if flags.Changed("source") {
		cfg.Source.Type, _ = flags.GetString("source")
	}

	if flags.Changed("output") {
		cfg.Sinks.XLSX.Enabled = true
		cfg.Sinks.XLSX.Path, _ = flags.GetString("output")
	}

	if noXLSX, _ := flags.GetBool("no-xlsx"); noXLSX {
		cfg.Sinks.XLSX.Enabled = false
	}

	if flags.Changed("csv-dir") {
		cfg.Sinks.CSV.Dir, _ = flags.GetString("csv-dir")
	}

	if flags.Changed("console") {
		cfg.Sinks.Console, _ = flags.GetBool("console")
	}

	if flags.Changed("clickhouse-sink") {
		cfg.Sinks.ClickHouse, _ = flags.GetBool("clickhouse-sink")
	}

	if flags.Changed("clickhouse-url") {
		cfg.ClickHouse.URL, _ = flags.GetString("clickhouse-url")
	}

	if flags.Changed("idle-timeout") {
		cfg.Utilization.IdleTimeout, _ = flags.GetDuration("idle-timeout")
	}

	if flags.Changed("timezone") {
		cfg.Utilization.Timezone, _ = flags.GetString("timezone")
	}

	if flags.Changed("from") {
		if cfg.Source.ClickHouse.From, err = timeFlag(flags, "from"); err != nil {
			return err
		}
	}

	if flags.Changed("to") {
		if cfg.Source.ClickHouse.To, err = timeFlag(flags, "to"); err != nil {
			return err
		}
	}

	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile, _ = flags.GetString("metrics-textfile")
	}

	return nil
}

func timeFlag(flags *pflag.FlagSet, name string) (time.Time, error) {
	value, _ := flags.GetString(name)

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}

	return t, nil
}

// runAnalysis wires the configured source and sinks into one analyzer run
func runAnalysis(ctx context.Context, log *logrus.Logger, cfg *Config, out io.Writer) (*utilization.Report, error) {
	if cfg.Metrics.Addr != "" {
		observability.StartMetricsServer(cfg.Metrics.Addr)
	}

	analyzer, err := utilization.NewAnalyzer(log, cfg.Utilization)
	if err != nil {
		return nil, err
	}

	var (
		chClient clickhouse.ClientInterface
		tables   *clickhouse.TableManager
	)

	if cfg.usesClickHouse() {
		chClient, tables, err = clickhouse.SetupClientWithTables(&cfg.ClickHouse, log)
		if err != nil {
			return nil, err
		}

		defer func() {
			if stopErr := chClient.Stop(); stopErr != nil {
				log.WithError(stopErr).Error("Failed to stop ClickHouse client")
			}
		}()
	}

	src, err := buildSource(log, cfg, chClient, analyzer.Location())
	if err != nil {
		return nil, err
	}

	sinks, err := buildSinks(log, cfg, tables, out)
	if err != nil {
		return nil, err
	}

	result, runErr := analyzer.Run(ctx, src, sinks...)

	if cfg.Metrics.Textfile != "" {
		if err := observability.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.WithError(err).Error("Failed to write metrics textfile")
		}
	}

	if runErr != nil {
		return nil, runErr
	}

	return result, nil
}

func buildSource(log logrus.FieldLogger, cfg *Config, chClient clickhouse.ClientInterface, loc *time.Location) (utilization.Source, error) {
	switch cfg.Source.Type {
	case SourceCSV:
		src, err := source.NewCSVSource(log, cfg.Source.CSV, loc)
		if err != nil {
			return nil, err
		}

		return src, nil
	case SourceClickHouse:
		src, err := source.NewClickHouseSource(log, chClient, cfg.Source.ClickHouse, loc)
		if err != nil {
			return nil, err
		}

		return src, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source.Type)
	}
}

func buildSinks(log logrus.FieldLogger, cfg *Config, tables *clickhouse.TableManager, out io.Writer) ([]utilization.Sink, error) {
	var sinks []utilization.Sink

	if cfg.Sinks.XLSX.Enabled {
		sink, err := report.NewXLSXSink(log, cfg.Sinks.XLSX.Path)
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, sink)
	}

	if cfg.Sinks.CSV.Dir != "" {
		sink, err := report.NewCSVSink(log, cfg.Sinks.CSV.Dir)
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, sink)
	}

	if cfg.Sinks.Console {
		sinks = append(sinks, report.NewConsoleSink(log, out))
	}

	if cfg.Sinks.ClickHouse {
		sink, err := report.NewClickHouseSink(log, tables)
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, sink)
	}

	if len(sinks) == 0 {
		return nil, ErrNoSinks
	}

	return sinks, nil
}
