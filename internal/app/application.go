// Package app wires the configuration, loader, runner, and exporter together
// for the command-line entry point.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"shunt.transitlab.org/internal/appconf"
	"shunt.transitlab.org/internal/clock"
	"shunt.transitlab.org/internal/gtfsload"
	"shunt.transitlab.org/internal/logging"
	"shunt.transitlab.org/internal/metrics"
	"shunt.transitlab.org/internal/network"
	"shunt.transitlab.org/internal/networkdb"
	"shunt.transitlab.org/internal/scenario"
)

// Application holds the dependencies for one scenario run.
type Application struct {
	Config     appconf.Config
	GtfsConfig gtfsload.Config
	Logger     *slog.Logger
	Loader     *gtfsload.Loader
	Runner     *scenario.Runner
	Clock      clock.Clock
	Metrics    *metrics.Metrics
}

// NewApplication builds an Application with real dependencies.
func NewApplication(config appconf.Config, gtfsConfig gtfsload.Config, logger *slog.Logger) *Application {
	if logger == nil {
		logger = slog.Default()
	}
	clk := clock.RealClock{}
	m := metrics.NewWithLogger(logger)
	return &Application{
		Config:     config,
		GtfsConfig: gtfsConfig,
		Logger:     logger,
		Loader:     gtfsload.NewLoader(gtfsConfig),
		Runner:     scenario.NewRunner(logger, clk, m),
		Clock:      clk,
		Metrics:    m,
	}
}

// RunScenario loads the baseline network, applies the scenario read from
// scenarioPath, and writes the result to a SQLite database at outputDBPath
// when one is given. The modification messages are returned even when the
// scenario fails to apply, so callers can report what went wrong.
func (app *Application) RunScenario(ctx context.Context, scenarioPath, outputDBPath string) (*network.Network, []scenario.ModificationMessages, error) {
	baseline, err := app.Loader.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading baseline network: %w", err)
	}

	data, err := os.ReadFile(scenarioPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading scenario file: %w", err)
	}
	s, err := scenario.ParseScenario(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing scenario: %w", err)
	}

	result, messages, err := app.Runner.Apply(s, baseline)
	if err != nil {
		return nil, messages, err
	}

	if outputDBPath != "" {
		if err := app.exportResult(ctx, result, s, outputDBPath); err != nil {
			return result, messages, err
		}
	}
	return result, messages, nil
}

func (app *Application) exportResult(ctx context.Context, result *network.Network, s *scenario.Scenario, outputDBPath string) error {
	client, err := networkdb.NewClient(networkdb.NewConfig(outputDBPath, app.Config.Env, app.Config.Verbose))
	if err != nil {
		return fmt.Errorf("opening output database: %w", err)
	}
	defer logging.SafeCloseWithLogging(client, app.Logger, "output_database")

	if err := client.ExportNetwork(ctx, result, s.ID, s.Description); err != nil {
		return fmt.Errorf("exporting network: %w", err)
	}
	return nil
}
