package networkdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shunt.transitlab.org/internal/logging"
	"shunt.transitlab.org/internal/network"
)

type stopTimeRow struct {
	patternID int
	tripID    string
	position  int
	arrival   int
	departure int
}

// ExportNetwork writes the complete network to the database, replacing any
// previous export.
func (c *Client) ExportNetwork(ctx context.Context, n *network.Network, scenarioID, description string) error {
	logger := slog.Default().With(slog.String("component", "network_exporter"))

	startTime := time.Now()
	defer func() {
		c.exportRuntime = time.Since(startTime)
		logging.LogOperation(logger, "network_export_completed",
			slog.Duration("duration", c.exportRuntime),
			slog.String("scenario", scenarioID))
	}()

	if err := c.clearExportedData(ctx); err != nil {
		return fmt.Errorf("error clearing previous export: %w", err)
	}

	logging.LogOperation(logger, "starting_network_export",
		slog.Int("stops", len(n.Stops)),
		slog.Int("routes", len(n.Routes)),
		slog.Int("patterns", len(n.Patterns)))

	if err := c.insertEntities(ctx, n, logger); err != nil {
		return err
	}

	stopTimes, err := c.insertPatterns(ctx, n, logger)
	if err != nil {
		return err
	}
	if err := c.bulkInsertStopTimes(ctx, stopTimes, logger); err != nil {
		return fmt.Errorf("unable to create stop times: %w", err)
	}

	if err := c.insertMetadata(ctx, n, scenarioID, description); err != nil {
		return err
	}
	return nil
}

// insertEntities writes stops, routes, and calendar rows in one transaction.
func (c *Client) insertEntities(ctx context.Context, n *network.Network, logger *slog.Logger) error {
	tx, err := c.DB.Begin()
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "insert_entities")

	for idx, s := range n.Stops {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO stops (idx, id, name, lat, lon) VALUES (?, ?, ?, ?, ?)`,
			idx, s.ID, toNullString(s.Name), s.Lat, s.Lon)
		if err != nil {
			return fmt.Errorf("unable to create stop: %w", err)
		}
	}

	for _, r := range n.Routes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO routes (id, short_name, long_name, mode) VALUES (?, ?, ?, ?)`,
			r.ID, toNullString(r.ShortName), toNullString(r.LongName), r.Mode)
		if err != nil {
			return fmt.Errorf("unable to create route: %w", err)
		}
	}

	for code, s := range n.Services {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO calendar (
				service_code, id, monday, tuesday, wednesday, thursday, friday,
				saturday, sunday, start_date, end_date
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			code, s.ID,
			boolToInt(s.Days[0]), boolToInt(s.Days[1]), boolToInt(s.Days[2]),
			boolToInt(s.Days[3]), boolToInt(s.Days[4]), boolToInt(s.Days[5]),
			boolToInt(s.Days[6]),
			fmt.Sprintf("%08d", s.StartDate), fmt.Sprintf("%08d", s.EndDate))
		if err != nil {
			return fmt.Errorf("unable to create calendar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.LogOperation(logger, "entities_inserted",
		slog.Int("stops", len(n.Stops)),
		slog.Int("routes", len(n.Routes)),
		slog.Int("calendar", len(n.Services)))
	return nil
}

// insertPatterns writes patterns, their per-stop rows, trips, and frequency
// entries, and collects the stop time rows for the bulk pass.
func (c *Client) insertPatterns(ctx context.Context, n *network.Network, logger *slog.Logger) ([]stopTimeRow, error) {
	tx, err := c.DB.Begin()
	if err != nil {
		return nil, err
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "insert_patterns")

	var stopTimes []stopTimeRow
	tripCount := 0
	for patternID, p := range n.Patterns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO patterns (id, original_id, route_id, direction_id, shape)
			 VALUES (?, ?, ?, ?, ?)`,
			patternID, toNullString(p.OriginalID), p.RouteID, p.DirectionID, p.Shape)
		if err != nil {
			return nil, fmt.Errorf("unable to create pattern: %w", err)
		}

		for pos, stopIdx := range p.Stops {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO pattern_stops (
					pattern_id, position, stop_idx, pickup_type, drop_off_type,
					wheelchair_accessible
				) VALUES (?, ?, ?, ?, ?, ?)`,
				patternID, pos, stopIdx, int(p.Pickups[pos]), int(p.Dropoffs[pos]),
				boolToInt(p.WheelchairAccessible[pos]))
			if err != nil {
				return nil, fmt.Errorf("unable to create pattern stop: %w", err)
			}
		}

		for _, t := range p.Trips {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO trips (pattern_id, trip_id, service_code) VALUES (?, ?, ?)`,
				patternID, t.TripID, t.ServiceCode)
			if err != nil {
				return nil, fmt.Errorf("unable to create trip: %w", err)
			}
			tripCount++

			for entry := range t.HeadwaySeconds {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO frequencies (
						pattern_id, trip_id, entry, headway_secs, start_time, end_time
					) VALUES (?, ?, ?, ?, ?, ?)`,
					patternID, t.TripID, entry,
					t.HeadwaySeconds[entry], t.StartTimes[entry], t.EndTimes[entry])
				if err != nil {
					return nil, fmt.Errorf("unable to create frequency entry: %w", err)
				}
			}

			for pos := range t.Arrivals {
				stopTimes = append(stopTimes, stopTimeRow{
					patternID: patternID,
					tripID:    t.TripID,
					position:  pos,
					arrival:   t.Arrivals[pos],
					departure: t.Departures[pos],
				})
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logging.LogOperation(logger, "patterns_inserted",
		slog.Int("patterns", len(n.Patterns)),
		slog.Int("trips", tripCount))
	return stopTimes, nil
}

// bulkInsertStopTimes writes stop time rows with multi-row INSERTs. Stop
// times dominate the export, so they get batched statements instead of one
// statement per row.
func (c *Client) bulkInsertStopTimes(ctx context.Context, stopTimes []stopTimeRow, logger *slog.Logger) error {
	logging.LogOperation(logger, "inserting_stop_times",
		slog.Int("count", len(stopTimes)))

	batchSize := c.config.GetBulkInsertBatchSize()
	const baseQuery = `INSERT INTO stop_times (
		pattern_id, trip_id, position, arrival_time, departure_time
	) VALUES `

	tx, err := c.DB.Begin()
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "bulk_insert_stop_times")

	for start := 0; start < len(stopTimes); start += batchSize {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		end := start + batchSize
		if end > len(stopTimes) {
			end = len(stopTimes)
		}
		batch := stopTimes[start:end]

		// Only placeholders reach the query string; all values go through args.
		var query strings.Builder
		query.WriteString(baseQuery)
		args := make([]interface{}, 0, len(batch)*5)
		for j, row := range batch {
			if j > 0 {
				query.WriteString(", ")
			}
			query.WriteString("(?, ?, ?, ?, ?)")
			args = append(args, row.patternID, row.tripID, row.position, row.arrival, row.departure)
		}

		if _, err := tx.ExecContext(ctx, query.String(), args...); err != nil {
			return fmt.Errorf("failed to insert stop_times batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.LogOperation(logger, "stop_times_inserted",
		slog.Int("count", len(stopTimes)))
	return nil
}

func (c *Client) insertMetadata(ctx context.Context, n *network.Network, scenarioID, description string) error {
	for feedID, checksum := range n.FeedChecksums {
		_, err := c.DB.ExecContext(ctx,
			`INSERT INTO feed_checksums (feed_id, checksum) VALUES (?, ?)`,
			feedID, int64(checksum))
		if err != nil {
			return fmt.Errorf("unable to record feed checksum: %w", err)
		}
	}
	_, err := c.DB.ExecContext(ctx,
		`INSERT INTO export_metadata (scenario_id, description, export_time) VALUES (?, ?, ?)`,
		scenarioID, toNullString(description), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("unable to record export metadata: %w", err)
	}
	return nil
}

// clearExportedData deletes in reverse dependency order so foreign key
// constraints hold throughout.
func (c *Client) clearExportedData(ctx context.Context) error {
	tables := []string{
		"export_metadata",
		"feed_checksums",
		"frequencies",
		"stop_times",
		"trips",
		"pattern_stops",
		"patterns",
		"calendar",
		"routes",
		"stops",
	}
	for _, table := range tables {
		if _, err := c.DB.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
