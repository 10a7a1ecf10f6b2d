package report

import "errors"

// Static errors for report sinks
var (
	ErrPathRequired   = errors.New("output path is required")
	ErrDirRequired    = errors.New("output directory is required")
	ErrNilReport      = errors.New("report is nil")
	ErrTablesRequired = errors.New("clickhouse table manager is required")
)
