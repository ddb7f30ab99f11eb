package scenario

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shunt.transitlab.org/internal/clock"
	"shunt.transitlab.org/internal/metrics"
	"shunt.transitlab.org/internal/network"
)

func TestUnmarshalModification(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		wantType string
	}{
		{"adjust speed", `{"type":"adjust-speed","routes":["r1"],"scale":2}`, TypeAdjustSpeed},
		{"adjust dwell time", `{"type":"adjust-dwell-time","routes":["r1"],"dwellSecs":30}`, TypeAdjustDwellTime},
		{"remove stops", `{"type":"remove-stops","routes":["r1"],"stops":["B"]}`, TypeRemoveStops},
		{"add stops", `{"type":"add-stops","routes":["r1"],"fromStop":"A","toStop":"B","hopTimes":[60]}`, TypeAddStops},
		{"insert stop", `{"type":"insert-stop","routes":["r1"],"stop":"D","afterStops":["A"]}`, TypeInsertStop},
		{"adjust frequency", `{"type":"adjust-frequency","route":"r1","entries":[]}`, TypeAdjustFrequency},
		{"add trips", `{"type":"add-trips","routeId":"r9","stops":[]}`, TypeAddTrips},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := UnmarshalModification([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, mod.Type())
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		_, err := UnmarshalModification([]byte(`{"type":"teleport-stops"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown modification type")
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := UnmarshalModification([]byte(`{"routes":["r1"]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no type field")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := UnmarshalModification([]byte(`{`))
		require.Error(t, err)
	})
}

func TestUnmarshalAdjustFrequencyDropDefault(t *testing.T) {
	t.Run("defaults to dropping trips outside the windows", func(t *testing.T) {
		mod, err := UnmarshalModification([]byte(`{"type":"adjust-frequency","route":"r1"}`))
		require.NoError(t, err)
		assert.True(t, mod.(*AdjustFrequency).DropTripsOutsideTimePeriod)
	})
	t.Run("explicit false is honored", func(t *testing.T) {
		mod, err := UnmarshalModification([]byte(`{"type":"adjust-frequency","route":"r1","dropTripsOutsideTimePeriod":false}`))
		require.NoError(t, err)
		assert.False(t, mod.(*AdjustFrequency).DropTripsOutsideTimePeriod)
	})
}

func TestParseScenario(t *testing.T) {
	doc := `{
		"id": "corridor-upgrade",
		"description": "Speed up r1 and drop stop B",
		"feedChecksums": {"feed1": 12345},
		"modifications": [
			{"type": "remove-stops", "routes": ["r1"], "stops": ["B"]},
			{"type": "adjust-speed", "routes": ["r1"], "scale": 2}
		]
	}`
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "corridor-upgrade", s.ID)
	assert.Equal(t, uint32(12345), s.FeedChecksums["feed1"])
	require.Len(t, s.Modifications, 2)
	assert.Equal(t, TypeRemoveStops, s.Modifications[0].Type())
	assert.Equal(t, TypeAdjustSpeed, s.Modifications[1].Type())

	t.Run("bad modification names its index", func(t *testing.T) {
		_, err := ParseScenario([]byte(`{"modifications":[{"type":"nope"}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "modification 0")
	})
}

// probeModification records when it is applied, for lifecycle tests.
type probeModification struct {
	baseModification
	name        string
	order       int
	failResolve bool
	failApply   bool
	log         *[]string
}

func (p *probeModification) Type() string   { return "probe-" + p.name }
func (p *probeModification) SortOrder() int { return p.order }

func (p *probeModification) Resolve(n *network.Network) bool {
	if p.failResolve {
		p.addError("cannot resolve %s", p.name)
	}
	return p.hasErrors()
}

func (p *probeModification) Apply(n *network.Network) bool {
	*p.log = append(*p.log, p.name)
	if p.failApply {
		p.addError("cannot apply %s", p.name)
	}
	return p.hasErrors()
}

func TestRunnerAppliesInSortOrder(t *testing.T) {
	n := testNetwork(t)
	var log []string
	s := &Scenario{ID: "ordering", Modifications: []Modification{
		&probeModification{name: "last", order: 60, log: &log},
		&probeModification{name: "first", order: 0, log: &log},
		&probeModification{name: "mid-a", order: 30, log: &log},
		&probeModification{name: "mid-b", order: 30, log: &log},
	}}

	_, _, err := NewRunner(nil, nil, nil).Apply(s, n)
	require.NoError(t, err)
	// Ties keep their declared order.
	assert.Equal(t, []string{"first", "mid-a", "mid-b", "last"}, log)
}

func TestRunnerReportsAllResolutionFailures(t *testing.T) {
	n := testNetwork(t)
	var log []string
	s := &Scenario{ID: "broken", Modifications: []Modification{
		&probeModification{name: "bad-one", order: 0, failResolve: true, log: &log},
		&probeModification{name: "fine", order: 10, log: &log},
		&probeModification{name: "bad-two", order: 20, failResolve: true, log: &log},
	}}

	result, _, err := NewRunner(nil, nil, nil).Apply(s, n)
	assert.Nil(t, result)
	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Len(t, appErr.Failed, 2)
	assert.Equal(t, "probe-bad-one", appErr.Failed[0].Type)
	assert.Equal(t, "probe-bad-two", appErr.Failed[1].Type)
	assert.Contains(t, err.Error(), "2 modifications failed")

	// Nothing may be applied when any modification fails to resolve.
	assert.Empty(t, log)
}

func TestRunnerAbortsOnFirstApplyError(t *testing.T) {
	n := testNetwork(t)
	var log []string
	s := &Scenario{ID: "abort", Modifications: []Modification{
		&probeModification{name: "ok", order: 0, log: &log},
		&probeModification{name: "fails", order: 30, failApply: true, log: &log},
		&probeModification{name: "never", order: 60, log: &log},
	}}

	result, _, err := NewRunner(nil, nil, nil).Apply(s, n)
	assert.Nil(t, result)
	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Len(t, appErr.Failed, 1)
	assert.Equal(t, "probe-fails", appErr.Failed[0].Type)
	assert.Equal(t, []string{"ok", "fails"}, log)
}

func TestRunnerEndToEnd(t *testing.T) {
	baseline := testNetwork(t)
	doc := `{
		"id": "corridor-upgrade",
		"modifications": [
			{"type": "remove-stops", "routes": ["r1"], "stops": ["B"]},
			{"type": "adjust-speed", "routes": ["r1"], "scale": 2}
		]
	}`
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)

	m := metrics.New()
	mock := clock.NewMockClock(time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC))
	runner := NewRunner(nil, mock, m)

	result, messages, err := runner.Apply(s, baseline)
	require.NoError(t, err)
	require.NotNil(t, result)

	// Speed doubles first (lower sort order), then B is removed.
	p := result.Patterns[0]
	assert.Equal(t, []int{0, 2}, p.Stops)
	assert.Equal(t, []int{0, 95}, p.Trips[0].Arrivals)
	assert.Equal(t, []int{0, 105}, p.Trips[0].Departures)

	// The baseline is untouched and route r2's pattern is shared.
	assert.Equal(t, []int{0, 1, 2}, baseline.Patterns[0].Stops)
	assert.Equal(t, []int{0, 100, 200}, baseline.Patterns[0].Trips[0].Arrivals)
	assert.Same(t, baseline.Patterns[1], result.Patterns[1])

	require.Len(t, messages, 2)
	assert.Equal(t, TypeAdjustSpeed, messages[0].Type)
	assert.Equal(t, TypeRemoveStops, messages[1].Type)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ScenariosApplied.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ModificationsApplied.WithLabelValues(TypeAdjustSpeed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ModificationsApplied.WithLabelValues(TypeRemoveStops)))
}

func TestRunnerCollectsWarnings(t *testing.T) {
	baseline := testNetwork(t)
	s := &Scenario{ID: "warned", Modifications: []Modification{
		&AddStops{Routes: []string{"r1"}, FromStop: "D", ToStop: "E", HopTimes: []int{60}},
	}}

	result, messages, err := NewRunner(nil, nil, nil).Apply(s, baseline)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, messages, 1)
	assert.Equal(t, TypeAddStops, messages[0].Type)
	require.NotEmpty(t, messages[0].Warnings)
	assert.Contains(t, messages[0].Warnings[0], "No patterns matched")
}

func TestRunnerResolutionErrorMetrics(t *testing.T) {
	baseline := testNetwork(t)
	m := metrics.New()
	s := &Scenario{ID: "bad", Modifications: []Modification{
		&RemoveStops{Routes: []string{"r1"}, Stops: []string{"ZZZ"}},
	}}

	_, _, err := NewRunner(nil, nil, m).Apply(s, baseline)
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ScenariosApplied.WithLabelValues("resolution_error")))
}
