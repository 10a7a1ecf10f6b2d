// Package testutil provides test utilities, including:
//   - query event fixtures anchored in a fixed timezone (events.go)
//   - temporary CSV query logs (csv.go)
//   - a fake ClickHouse HTTP interface for client, source and sink tests (clickhouse.go)
//
// None of the helpers need Docker or network access.
package testutil
