// Package file loads opsync configuration from a TOML file and watches
// it for changes.
package file

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

// Config is the top-level opsync configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.opsync/data).
	DataDir string `toml:"data_dir"`

	// Scheduler controls the automatic sync loop.
	Scheduler SchedulerConfig `toml:"scheduler"`

	// Push configures the outbound mirror. An empty endpoint disables
	// pushing.
	Push PushConfig `toml:"push"`

	// Collections maps collection names to their source settings.
	Collections map[string]CollectionConfig `toml:"collections"`
}

// SchedulerConfig controls the automatic sync loop.
type SchedulerConfig struct {
	Enabled bool `toml:"enabled"`

	// CheckIntervalMinutes is how often the guard is re-checked.
	CheckIntervalMinutes int `toml:"check_interval_minutes"`
}

// PushConfig configures the outbound mirror endpoint.
type PushConfig struct {
	Endpoint    string `toml:"endpoint"`
	BearerToken string `toml:"bearer_token"`
}

// CollectionConfig holds one collection's source and normalisation
// settings.
type CollectionConfig struct {
	// Endpoint is the source URL records are fetched from.
	Endpoint string `toml:"endpoint"`

	// Method is the HTTP method for fetches, GET by default.
	Method string `toml:"method"`

	// BearerToken, when set, authenticates fetches.
	BearerToken string `toml:"bearer_token"`

	// TimeoutSeconds bounds one fetch. Zero uses the connector default.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// Aliases maps canonical field names to source key candidates,
	// tried in order.
	Aliases map[string][]string `toml:"aliases"`

	// Defaults maps canonical field names to the value used when no
	// alias matches.
	Defaults map[string]string `toml:"defaults"`

	// CompareFields overrides the default compare whitelist.
	CompareFields []string `toml:"compare_fields"`
}

// CheckInterval returns the scheduler interval as a duration.
func (c SchedulerConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMinutes) * time.Minute
}

// Timeout returns the fetch timeout as a duration.
func (c CollectionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			Enabled:              true,
			CheckIntervalMinutes: 60,
		},
		Collections: map[string]CollectionConfig{},
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	for name, collection := range c.Collections {
		if collection.Endpoint == "" {
			return fmt.Errorf("%w: collection %s has no endpoint", domain.ErrInvalidInput, name)
		}
		if _, err := url.ParseRequestURI(collection.Endpoint); err != nil {
			return fmt.Errorf("%w: collection %s endpoint: %v", domain.ErrInvalidInput, name, err)
		}
		for field := range collection.Aliases {
			if !isCanonicalField(field) {
				return fmt.Errorf("%w: collection %s aliases unknown field %q", domain.ErrInvalidInput, name, field)
			}
		}
		for _, field := range collection.CompareFields {
			if !isCanonicalField(field) {
				return fmt.Errorf("%w: collection %s compares unknown field %q", domain.ErrInvalidInput, name, field)
			}
		}
	}
	return nil
}

func isCanonicalField(name string) bool {
	for _, field := range domain.CanonicalFields {
		if field == name {
			return true
		}
	}
	return false
}
