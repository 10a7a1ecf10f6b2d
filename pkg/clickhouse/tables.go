package clickhouse

import (
	"context"
	"fmt"
)

// Report table names
const (
	WindowsTable = "warehouse_utilization"
	DailyTable   = "daily_aggregation"
)

// TableManager creates and fills the report tables
type TableManager struct {
	client   ClientInterface
	database string
	cluster  string
}

// NewTableManager creates a new report table manager
func NewTableManager(client ClientInterface, database, cluster string) *TableManager {
	return &TableManager{
		client:   client,
		database: database,
		cluster:  cluster,
	}
}

// Database returns the database holding the report tables
func (m *TableManager) Database() string {
	return m.database
}

// EnsureTables creates the database and any missing report table
func (m *TableManager) EnsureTables(ctx context.Context) error {
	if _, err := m.client.Execute(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`%s", m.database, m.onCluster())); err != nil {
		return fmt.Errorf("failed to create database %s: %w", m.database, err)
	}

	tables := []struct {
		name    string
		columns string
		orderBy string
	}{
		{
			name: WindowsTable,
			columns: `run_id String,
			day Date,
			window_start DateTime64(3, 'UTC'),
			window_end DateTime64(3, 'UTC'),
			total_queries UInt64,
			distinct_queries UInt64,
			cached_queries UInt64,
			running_start Nullable(DateTime64(3, 'UTC')),
			running_end Nullable(DateTime64(3, 'UTC')),
			running_minutes Float64`,
			orderBy: "day, window_start, run_id",
		},
		{
			name: DailyTable,
			columns: `run_id String,
			day Date,
			total_queries UInt64,
			distinct_queries UInt64,
			cached_queries UInt64,
			running_minutes Float64`,
			orderBy: "day, run_id",
		},
	}

	for _, table := range tables {
		exists, err := TableExists(ctx, m.client, m.database, table.name)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table.name, err)
		}

		if exists {
			continue
		}

		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s%s (
			%s
		) ENGINE = MergeTree()
		ORDER BY (%s)`, m.table(table.name), m.onCluster(), table.columns, table.orderBy)

		if _, err := m.client.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// InsertWindows writes window rows
func (m *TableManager) InsertWindows(ctx context.Context, rows []WindowRow) error {
	return m.client.BulkInsert(ctx, m.table(WindowsTable), rows)
}

// InsertDaily writes daily rows
func (m *TableManager) InsertDaily(ctx context.Context, rows []DailyRow) error {
	return m.client.BulkInsert(ctx, m.table(DailyTable), rows)
}

func (m *TableManager) table(name string) string {
	return fmt.Sprintf("`%s`.`%s`", m.database, name)
}

func (m *TableManager) onCluster() string {
	if m.cluster == "" {
		return ""
	}

	return fmt.Sprintf(" ON CLUSTER '%s'", escapeString(m.cluster))
}
