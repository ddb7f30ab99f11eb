package appconf

import (
	"encoding/json"
	"fmt"
	"os"
)

// FeedSpec configures one GTFS feed in the config file.
type FeedSpec struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	AuthHeaderKey   string `json:"auth-header-key,omitempty"`
	AuthHeaderValue string `json:"auth-header-value,omitempty"`
}

// JSONConfig mirrors the JSON configuration file format.
type JSONConfig struct {
	Env      string     `json:"env,omitempty"`
	Verbose  bool       `json:"verbose,omitempty"`
	Feeds    []FeedSpec `json:"feeds"`
	DataPath string     `json:"data-path,omitempty"`
}

// GTFSConfigData carries the feed-loading parts of the configuration in a
// form the GTFS loader package can consume without importing appconf's
// callers.
type GTFSConfigData struct {
	Feeds    []FeedSpec
	DataPath string
	Env      Environment
	Verbose  bool
}

// LoadFromFile reads and validates a JSON configuration file.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config JSONConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func (c *JSONConfig) validate() error {
	if len(c.Feeds) == 0 {
		return fmt.Errorf("at least one feed must be configured")
	}
	seen := make(map[string]bool, len(c.Feeds))
	for i, feed := range c.Feeds {
		if feed.ID == "" {
			return fmt.Errorf("feed %d has no id", i)
		}
		if feed.URL == "" {
			return fmt.Errorf("feed %s has no url", feed.ID)
		}
		if seen[feed.ID] {
			return fmt.Errorf("feed id %s appears more than once", feed.ID)
		}
		seen[feed.ID] = true
	}
	switch c.Env {
	case "", "development", "test", "production", "prod":
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	return nil
}

// ToAppConfig converts the file contents to the application configuration.
func (c *JSONConfig) ToAppConfig() Config {
	return Config{
		Env:     EnvFlagToEnvironment(c.Env),
		Verbose: c.Verbose,
	}
}

// ToGtfsConfigData converts the file contents to loader configuration data.
func (c *JSONConfig) ToGtfsConfigData() GTFSConfigData {
	return GTFSConfigData{
		Feeds:    c.Feeds,
		DataPath: c.DataPath,
		Env:      EnvFlagToEnvironment(c.Env),
		Verbose:  c.Verbose,
	}
}
