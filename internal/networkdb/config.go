// Package networkdb writes an edited transit network to a SQLite database so
// downstream tools can query the result of a scenario without reparsing GTFS.
package networkdb

import (
	"shunt.transitlab.org/internal/appconf"
)

const defaultBulkInsertBatchSize = 3000

// Config holds database configuration.
type Config struct {
	DBPath  string
	Env     appconf.Environment
	verbose bool

	// BulkInsertBatchSize is the number of rows per multi-row INSERT. Zero
	// selects the default.
	BulkInsertBatchSize int
}

// NewConfig creates a Config with the provided path, environment, and
// verbosity.
func NewConfig(dbPath string, env appconf.Environment, verbose bool) Config {
	return Config{
		DBPath:  dbPath,
		Env:     env,
		verbose: verbose,
	}
}

// GetBulkInsertBatchSize returns the configured batch size, or the default
// when unset.
func (c Config) GetBulkInsertBatchSize() int {
	if c.BulkInsertBatchSize > 0 {
		return c.BulkInsertBatchSize
	}
	return defaultBulkInsertBatchSize
}
