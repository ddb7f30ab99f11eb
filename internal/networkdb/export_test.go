package networkdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shunt.transitlab.org/internal/appconf"
	"shunt.transitlab.org/internal/network"
)

func setupTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(NewConfig(":memory:", appconf.Test, false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func exportableNetwork() *network.Network {
	n := network.New()
	n.AddStop(network.Stop{ID: "A", Name: "First & Main", Lat: 47.60, Lon: -122.30})
	n.AddStop(network.Stop{ID: "B", Name: "Second & Main", Lat: 47.61, Lon: -122.30})
	n.AddRoute(network.Route{ID: "r1", ShortName: "1", Mode: 3})
	n.Services = append(n.Services, network.Service{
		ID:        "wk",
		Days:      [7]bool{true, true, true, true, true, false, false},
		StartDate: 20260101,
		EndDate:   20261231,
	})
	n.Patterns = append(n.Patterns, &network.TripPattern{
		OriginalID:           "feed:r1:0",
		RouteID:              "r1",
		Stops:                []int{0, 1},
		Pickups:              []network.PickDrop{0, 0},
		Dropoffs:             []network.PickDrop{0, 0},
		WheelchairAccessible: []bool{true, false},
		Trips: []*network.TripSchedule{
			{
				TripID:      "t1",
				ServiceCode: 0,
				Arrivals:    []int{28800, 29100},
				Departures:  []int{28800, 29130},
			},
			{
				TripID:         "f1",
				ServiceCode:    0,
				Arrivals:       []int{0, 300},
				Departures:     []int{0, 330},
				HeadwaySeconds: []int{600},
				StartTimes:     []int{21600},
				EndTimes:       []int{36000},
			},
		},
		HasSchedules:   true,
		HasFrequencies: true,
	})
	n.FeedChecksums["feed"] = 0xdeadbeef
	n.RefreshServiceFlags()
	return n
}

func TestExportNetwork(t *testing.T) {
	client := setupTestClient(t)
	require.NoError(t, client.ExportNetwork(context.Background(), exportableNetwork(), "scn-1", "speed test"))

	counts, err := client.TableCounts()
	require.NoError(t, err)
	assert.Equal(t, 2, counts["stops"])
	assert.Equal(t, 1, counts["routes"])
	assert.Equal(t, 1, counts["calendar"])
	assert.Equal(t, 1, counts["patterns"])
	assert.Equal(t, 2, counts["pattern_stops"])
	assert.Equal(t, 2, counts["trips"])
	assert.Equal(t, 4, counts["stop_times"])
	assert.Equal(t, 1, counts["frequencies"])
	assert.Equal(t, 1, counts["feed_checksums"])
	assert.Equal(t, 1, counts["export_metadata"])
}

func TestExportNetworkRowContents(t *testing.T) {
	client := setupTestClient(t)
	require.NoError(t, client.ExportNetwork(context.Background(), exportableNetwork(), "scn-1", ""))

	var name string
	var lat float64
	err := client.DB.QueryRow("SELECT name, lat FROM stops WHERE id = 'A'").Scan(&name, &lat)
	require.NoError(t, err)
	assert.Equal(t, "First & Main", name)
	assert.InDelta(t, 47.60, lat, 1e-9)

	var monday, saturday int
	var startDate string
	err = client.DB.QueryRow("SELECT monday, saturday, start_date FROM calendar WHERE id = 'wk'").
		Scan(&monday, &saturday, &startDate)
	require.NoError(t, err)
	assert.Equal(t, 1, monday)
	assert.Equal(t, 0, saturday)
	assert.Equal(t, "20260101", startDate)

	var arrival, departure int
	err = client.DB.QueryRow(
		"SELECT arrival_time, departure_time FROM stop_times WHERE trip_id = 't1' AND position = 1").
		Scan(&arrival, &departure)
	require.NoError(t, err)
	assert.Equal(t, 29100, arrival)
	assert.Equal(t, 29130, departure)

	var headway, start, end int
	err = client.DB.QueryRow(
		"SELECT headway_secs, start_time, end_time FROM frequencies WHERE trip_id = 'f1'").
		Scan(&headway, &start, &end)
	require.NoError(t, err)
	assert.Equal(t, 600, headway)
	assert.Equal(t, 21600, start)
	assert.Equal(t, 36000, end)

	var checksum int64
	err = client.DB.QueryRow("SELECT checksum FROM feed_checksums WHERE feed_id = 'feed'").Scan(&checksum)
	require.NoError(t, err)
	assert.Equal(t, int64(0xdeadbeef), checksum)
}

func TestExportNetworkReplacesPreviousExport(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	require.NoError(t, client.ExportNetwork(ctx, exportableNetwork(), "scn-1", ""))
	require.NoError(t, client.ExportNetwork(ctx, exportableNetwork(), "scn-2", ""))

	counts, err := client.TableCounts()
	require.NoError(t, err)
	assert.Equal(t, 2, counts["stops"])
	assert.Equal(t, 1, counts["export_metadata"])

	var scenarioID string
	err = client.DB.QueryRow("SELECT scenario_id FROM export_metadata").Scan(&scenarioID)
	require.NoError(t, err)
	assert.Equal(t, "scn-2", scenarioID)
}

func TestNewClientRejectsFileDBInTestEnv(t *testing.T) {
	_, err := NewClient(NewConfig("/tmp/shunt-test.db", appconf.Test, false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test database must use in-memory storage")
}

func TestDumpNetworkSummary(t *testing.T) {
	out := DumpNetworkSummary(exportableNetwork())
	assert.Contains(t, out, "Stops")
	assert.Contains(t, out, "Trips")
	assert.Contains(t, out, "(int) 2")
}
