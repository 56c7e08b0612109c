package xcallure

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration. Values can come from an optional
// yaml file and are overridden by command line flags.
type Config struct {
	// Port used by the HTTP server. 0 picks a free port.
	Port int `yaml:"port"`
	// DatabaseFile is the sqlite file reports are stored in. An empty
	// value uses an in-memory database.
	DatabaseFile string `yaml:"database_file"`

	ElasticAddresses []string `yaml:"elastic_addresses"`
	ElasticIndex     string   `yaml:"elastic_index"`

	SlackToken     string `yaml:"slack_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	// RetentionSchedule is a cron expression (with seconds) that triggers
	// report cleanup. Empty disables retention.
	RetentionSchedule string `yaml:"retention_schedule"`
	// RetentionMaxAgeDays is how long stored reports are kept.
	RetentionMaxAgeDays int `yaml:"retention_max_age_days"`
}

// RetentionMaxAge returns the retention window as a duration.
func (c Config) RetentionMaxAge() time.Duration {
	return time.Duration(c.RetentionMaxAgeDays) * 24 * time.Hour
}

func defaultConfig() Config {
	return Config{
		Port:                1338,
		DatabaseFile:        "xcallure.db",
		ElasticIndex:        "xcallure-reports",
		RetentionMaxAgeDays: 30,
	}
}

func loadConfig(path string, into *Config) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(body, into); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return nil
}
