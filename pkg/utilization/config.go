package utilization

import (
	"fmt"
	"time"
)

const (
	// DefaultIdleTimeout is the warehouse auto-suspend threshold
	DefaultIdleTimeout = 10 * time.Minute
	// DefaultTimezone is the zone used to localize timestamps and derive days
	DefaultTimezone = "America/Chicago"
)

// Config controls window segmentation
type Config struct {
	// IdleTimeout is the auto-suspend threshold. A window closes when the next
	// event arrives later than the last event plus this duration.
	IdleTimeout time.Duration `yaml:"idleTimeout" default:"10m"`
	// Timezone is an IANA zone name used for localization and day attribution
	Timezone string `yaml:"timezone" default:"America/Chicago"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidIdleTimeout, c.IdleTimeout)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// SetDefaults fills in zero values
func (c *Config) SetDefaults() {
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}

	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTimezone, c.Timezone, err)
	}

	return loc, nil
}
