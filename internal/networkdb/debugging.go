package networkdb

import (
	"fmt"
	"log/slog"

	"github.com/davecgh/go-spew/spew"

	"shunt.transitlab.org/internal/logging"
	"shunt.transitlab.org/internal/network"
)

// TableCounts returns the row count of every exported table, for verifying
// an export end to end.
func (c *Client) TableCounts() (map[string]int, error) {
	rows, err := c.DB.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("failed to query table names: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows,
		slog.Default().With(slog.String("component", "debugging")),
		"database_rows")

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, table := range tables {
		var count int
		if err := c.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, err
		}
		counts[table] = count
	}
	return counts, nil
}

// NetworkSummary is the shape of the structure dumped by DumpNetworkSummary.
type NetworkSummary struct {
	Stops          int
	Routes         int
	Services       int
	Patterns       int
	Trips          int
	HasSchedules   bool
	HasFrequencies bool
	FeedChecksums  map[string]uint32
}

// DumpNetworkSummary renders a network summary for debug output.
func DumpNetworkSummary(n *network.Network) string {
	summary := NetworkSummary{
		Stops:          len(n.Stops),
		Routes:         len(n.Routes),
		Services:       len(n.Services),
		Patterns:       len(n.Patterns),
		HasSchedules:   n.HasSchedules,
		HasFrequencies: n.HasFrequencies,
		FeedChecksums:  n.FeedChecksums,
	}
	for _, p := range n.Patterns {
		summary.Trips += len(p.Trips)
	}
	return spew.Sdump(summary)
}
