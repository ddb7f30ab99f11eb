package scenario

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"shunt.transitlab.org/internal/clock"
	"shunt.transitlab.org/internal/logging"
	"shunt.transitlab.org/internal/metrics"
	"shunt.transitlab.org/internal/network"
)

// Scenario is an ordered sequence of modifications applied non-destructively
// on top of a baseline network.
type Scenario struct {
	// ID identifies the scenario for caching: two scenarios with the same
	// non-empty ID must be identical.
	ID string `json:"id,omitempty"`

	Description string `json:"description,omitempty"`

	Modifications []Modification `json:"-"`

	// FeedChecksums maps feed IDs to CRC32 checksums of the feeds the
	// scenario was authored against. Carried for callers that verify a
	// scenario matches its baseline; the engine itself does not check them.
	FeedChecksums map[string]uint32 `json:"feedChecksums,omitempty"`
}

// ModificationMessages carries one modification's operator-facing messages
// out of an application run.
type ModificationMessages struct {
	Type     string
	Errors   []string
	Warnings []string
	Info     []string
}

// ApplicationError reports every modification that failed, with all of its
// accumulated messages, so an operator can fix several problems in one
// round trip rather than one per attempt.
type ApplicationError struct {
	Failed []ModificationMessages
}

func (e *ApplicationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario cannot be applied: %d modifications failed", len(e.Failed))
	for _, m := range e.Failed {
		fmt.Fprintf(&b, "; %s: %s", m.Type, strings.Join(m.Errors, " / "))
	}
	return b.String()
}

// Runner applies scenarios to networks.
type Runner struct {
	logger  *slog.Logger
	clock   clock.Clock
	metrics *metrics.Metrics
}

// NewRunner creates a runner with the given dependencies. A nil logger uses
// the default logger, a nil clock uses real time, and nil metrics disables
// instrumentation.
func NewRunner(logger *slog.Logger, clk clock.Clock, m *metrics.Metrics) *Runner {
	if logger == nil {
		logger = slog.Default().With(slog.String("component", "scenario_runner"))
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Runner{logger: logger, clock: clk, metrics: m}
}

// Apply returns a copy of the baseline network with the scenario's
// modifications applied, plus the non-fatal messages each modification
// produced, in application order.
//
// Modifications run in their canonical sort order, ties keeping declared
// order. All of them are resolved against the network copy before any is
// applied; resolution failures abort the whole scenario with an
// ApplicationError listing every failing modification. Apply-time errors
// abort at the first failing modification, since later modifications may
// depend on an earlier one having succeeded. The baseline is never mutated.
func (r *Runner) Apply(s *Scenario, baseline *network.Network) (*network.Network, []ModificationMessages, error) {
	start := r.clock.Now()
	logging.LogOperation(r.logger, "applying_scenario",
		slog.String("scenario", s.ID),
		slog.Int("modifications", len(s.Modifications)))

	mods := make([]Modification, len(s.Modifications))
	copy(mods, s.Modifications)
	sort.SliceStable(mods, func(i, j int) bool { return mods[i].SortOrder() < mods[j].SortOrder() })

	copied := baseline.ScenarioCopy()

	// Resolve everything before touching any pattern, so a scenario with
	// several broken modifications reports all of them at once.
	var failed []ModificationMessages
	for _, mod := range mods {
		if mod.Resolve(copied) {
			failed = append(failed, messagesFor(mod))
		}
	}
	if len(failed) > 0 {
		r.recordOutcome("resolution_error", start)
		return nil, nil, &ApplicationError{Failed: failed}
	}

	var messages []ModificationMessages
	for _, mod := range mods {
		logging.LogOperation(r.logger, "applying_modification", slog.String("type", mod.Type()))
		before := patternSet(copied)
		if mod.Apply(copied) {
			// Bail out at the first apply error: the network has already
			// been changed and later modifications could fail meaninglessly.
			r.recordOutcome("apply_error", start)
			return nil, messages, &ApplicationError{Failed: []ModificationMessages{messagesFor(mod)}}
		}
		r.recordPatternChurn(copied, before)
		if r.metrics != nil {
			r.metrics.ModificationsApplied.WithLabelValues(mod.Type()).Inc()
		}
		if msgs := messagesFor(mod); len(msgs.Warnings) > 0 || len(msgs.Info) > 0 {
			messages = append(messages, msgs)
		}
	}

	copied.RefreshServiceFlags()
	if err := copied.CheckConsistent(); err != nil {
		logging.LogError(r.logger, "scenario produced an inconsistent network", err,
			slog.String("scenario", s.ID))
		r.recordOutcome("inconsistent", start)
		return nil, messages, fmt.Errorf("scenario %s produced an inconsistent network: %w", s.ID, err)
	}

	r.recordOutcome("success", start)
	logging.LogOperation(r.logger, "scenario_applied",
		slog.String("scenario", s.ID),
		slog.Int("patterns", len(copied.Patterns)))
	return copied, messages, nil
}

func (r *Runner) recordOutcome(outcome string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.ScenariosApplied.WithLabelValues(outcome).Inc()
	r.metrics.ScenarioApplyDuration.Observe(r.clock.Now().Sub(start).Seconds())
}

// recordPatternChurn counts how many of the network's patterns survived a
// modification untouched versus being replaced by clones.
func (r *Runner) recordPatternChurn(n *network.Network, before map[*network.TripPattern]bool) {
	if r.metrics == nil {
		return
	}
	passthrough, cloned := 0, 0
	for _, p := range n.Patterns {
		if before[p] {
			passthrough++
		} else {
			cloned++
		}
	}
	r.metrics.PatternsPassthrough.Add(float64(passthrough))
	r.metrics.PatternsCloned.Add(float64(cloned))
}

func patternSet(n *network.Network) map[*network.TripPattern]bool {
	set := make(map[*network.TripPattern]bool, len(n.Patterns))
	for _, p := range n.Patterns {
		set[p] = true
	}
	return set
}

func messagesFor(mod Modification) ModificationMessages {
	return ModificationMessages{
		Type:     mod.Type(),
		Errors:   mod.Errors(),
		Warnings: mod.Warnings(),
		Info:     mod.Info(),
	}
}
