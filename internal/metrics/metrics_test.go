package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	m := New()

	assert.NotNil(t, m.Registry)
	assert.NotNil(t, m.ScenariosApplied)
	assert.NotNil(t, m.ModificationsApplied)
	assert.NotNil(t, m.ScenarioApplyDuration)
	assert.NotNil(t, m.PatternsCloned)
	assert.NotNil(t, m.PatternsPassthrough)
}

func TestNewWithLogger(t *testing.T) {
	m := NewWithLogger(nil)
	assert.NotNil(t, m)
	assert.Nil(t, m.logger)
}

func TestIndependentRegistries(t *testing.T) {
	// Two instances must not collide: each gets its own registry.
	a := New()
	b := New()
	a.PatternsCloned.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.PatternsCloned))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.PatternsCloned))
}

func TestRecordScenarioApplication(t *testing.T) {
	m := New()

	m.ScenariosApplied.WithLabelValues("success").Inc()
	m.ModificationsApplied.WithLabelValues("adjust-speed").Inc()
	m.ModificationsApplied.WithLabelValues("adjust-speed").Inc()
	m.ScenarioApplyDuration.Observe(0.25)
	m.PatternsPassthrough.Add(10)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ScenariosApplied.WithLabelValues("success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ModificationsApplied.WithLabelValues("adjust-speed")))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.PatternsPassthrough))
}
