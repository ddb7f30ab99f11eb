package gtfsload

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/OneBusAway/go-gtfs"

	"shunt.transitlab.org/internal/logging"
	"shunt.transitlab.org/internal/network"
	"shunt.transitlab.org/internal/utils"
)

// patternBuilder accumulates the trips sharing one stop sequence, boarding
// rules, and direction on a route.
type patternBuilder struct {
	routeID     string
	directionID int
	stops       []int
	pickups     []network.PickDrop
	dropoffs    []network.PickDrop
	wheelchair  []bool
	shape       []byte
	trips       []*network.TripSchedule
}

// buildNetwork merges one parsed feed into the network. Trips are grouped
// into patterns by route, direction, stop sequence, and boarding rules, the
// same grouping scenario modifications operate on.
func buildNetwork(n *network.Network, staticData *gtfs.Static, feedID string, checksum uint32, logger *slog.Logger) {
	n.FeedChecksums[feedID] = checksum

	// Stops without coordinates model station pathways, not places vehicles
	// stop, and nothing downstream can use them.
	skippedStops := 0
	for _, s := range staticData.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			skippedStops++
			continue
		}
		n.AddStop(network.Stop{
			ID:   s.Id,
			Name: s.Name,
			Lat:  *s.Latitude,
			Lon:  *s.Longitude,
		})
	}

	for _, r := range staticData.Routes {
		n.AddRoute(network.Route{
			ID:        r.Id,
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Mode:      int(r.Type),
		})
	}

	serviceCodes := make(map[string]int, len(staticData.Services))
	for _, s := range staticData.Services {
		serviceCodes[s.Id] = len(n.Services)
		n.Services = append(n.Services, network.Service{
			ID:        s.Id,
			Days:      [7]bool{s.Monday, s.Tuesday, s.Wednesday, s.Thursday, s.Friday, s.Saturday, s.Sunday},
			StartDate: utils.YYYYMMDD(s.StartDate),
			EndDate:   utils.YYYYMMDD(s.EndDate),
		})
	}

	builders := make(map[string]*patternBuilder)
	var order []string
	skippedTrips := 0
	for i := range staticData.Trips {
		t := &staticData.Trips[i]
		builder, ok := tripBuilder(n, t, serviceCodes)
		if !ok {
			skippedTrips++
			continue
		}
		key := builderKey(builder)
		existing, seen := builders[key]
		if !seen {
			builders[key] = builder
			order = append(order, key)
			existing = builder
		}
		existing.trips = append(existing.trips, tripSchedule(t, serviceCodes))
		if existing.shape == nil && t.Shape != nil {
			existing.shape = encodeTripShape(t.Shape)
		}
	}

	patternSeq := make(map[string]int)
	for _, key := range order {
		b := builders[key]
		seq := patternSeq[b.routeID]
		patternSeq[b.routeID] = seq + 1
		n.Patterns = append(n.Patterns, &network.TripPattern{
			OriginalID:           fmt.Sprintf("%s:%s:%d", feedID, b.routeID, seq),
			RouteID:              b.routeID,
			DirectionID:          b.directionID,
			Stops:                b.stops,
			Pickups:              b.pickups,
			Dropoffs:             b.dropoffs,
			WheelchairAccessible: b.wheelchair,
			Trips:                b.trips,
			Shape:                b.shape,
			HasSchedules:         true,
		})
	}

	if skippedStops > 0 || skippedTrips > 0 {
		logging.LogOperation(logger, "feed_entities_skipped",
			slog.String("feed", feedID),
			slog.Int("stops_without_coordinates", skippedStops),
			slog.Int("unusable_trips", skippedTrips))
	}
}

// tripBuilder derives the pattern skeleton a trip belongs to. Trips missing
// their route or service, trips on unknown stops, and trips with fewer than
// two stop times cannot be represented and are dropped.
func tripBuilder(n *network.Network, t *gtfs.ScheduledTrip, serviceCodes map[string]int) (*patternBuilder, bool) {
	if t.Route == nil || t.Service == nil || len(t.StopTimes) < 2 {
		return nil, false
	}
	if _, ok := serviceCodes[t.Service.Id]; !ok {
		return nil, false
	}
	b := &patternBuilder{
		routeID:     t.Route.Id,
		directionID: int(t.DirectionId),
		stops:       make([]int, 0, len(t.StopTimes)),
		pickups:     make([]network.PickDrop, 0, len(t.StopTimes)),
		dropoffs:    make([]network.PickDrop, 0, len(t.StopTimes)),
		wheelchair:  make([]bool, 0, len(t.StopTimes)),
	}
	for i := range t.StopTimes {
		st := &t.StopTimes[i]
		if st.Stop == nil {
			return nil, false
		}
		idx, ok := n.StopIndex(st.Stop.Id)
		if !ok {
			return nil, false
		}
		b.stops = append(b.stops, idx)
		b.pickups = append(b.pickups, network.PickDrop(st.PickupType))
		b.dropoffs = append(b.dropoffs, network.PickDrop(st.DropOffType))
		b.wheelchair = append(b.wheelchair, int(st.Stop.WheelchairBoarding) == 1)
	}
	return b, true
}

func builderKey(b *patternBuilder) string {
	var key strings.Builder
	fmt.Fprintf(&key, "%s|%d", b.routeID, b.directionID)
	for i, s := range b.stops {
		fmt.Fprintf(&key, "|%d:%d:%d", s, b.pickups[i], b.dropoffs[i])
	}
	return key.String()
}

func tripSchedule(t *gtfs.ScheduledTrip, serviceCodes map[string]int) *network.TripSchedule {
	nStops := len(t.StopTimes)
	schedule := &network.TripSchedule{
		TripID:      t.ID,
		ServiceCode: serviceCodes[t.Service.Id],
		Arrivals:    make([]int, nStops),
		Departures:  make([]int, nStops),
	}
	for i := range t.StopTimes {
		st := &t.StopTimes[i]
		arrival := int(utils.NanosToSeconds(int64(st.ArrivalTime)))
		departure := int(utils.NanosToSeconds(int64(st.DepartureTime)))
		if departure < arrival {
			departure = arrival
		}
		schedule.Arrivals[i] = arrival
		schedule.Departures[i] = departure
	}
	return schedule
}

func encodeTripShape(shape *gtfs.Shape) []byte {
	coords := make([][]float64, 0, len(shape.Points))
	for _, pt := range shape.Points {
		coords = append(coords, []float64{pt.Latitude, pt.Longitude})
	}
	return network.EncodeShape(coords)
}
