package utilization

import "errors"

// Static errors for configuration and scanning
var (
	ErrInvalidIdleTimeout = errors.New("idle timeout must be positive")
	ErrInvalidTimezone    = errors.New("invalid timezone")
	ErrOutOfOrder         = errors.New("event is older than the previous event")
	ErrNilSource          = errors.New("event source is required")
)
