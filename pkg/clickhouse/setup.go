package clickhouse

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SetupClient creates and starts a ClickHouse client
func SetupClient(chConfig *Config, logger *logrus.Logger) (ClientInterface, error) {
	chClient, err := NewClient(logger, chConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create ClickHouse client: %w", err)
	}

	if startErr := chClient.Start(); startErr != nil {
		return nil, fmt.Errorf("failed to start ClickHouse client: %w", startErr)
	}

	return chClient, nil
}

// SetupClientWithTables creates and starts a ClickHouse client with a report table manager
func SetupClientWithTables(chConfig *Config, logger *logrus.Logger) (ClientInterface, *TableManager, error) {
	chClient, err := SetupClient(chConfig, logger)
	if err != nil {
		return nil, nil, err
	}

	tables := NewTableManager(chClient, chConfig.MapDatabase(chConfig.Database), chConfig.Cluster)

	return chClient, tables, nil
}
