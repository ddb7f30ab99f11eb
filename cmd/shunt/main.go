package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"shunt.transitlab.org/internal/app"
	"shunt.transitlab.org/internal/appconf"
	"shunt.transitlab.org/internal/gtfsload"
	"shunt.transitlab.org/internal/logging"
	"shunt.transitlab.org/internal/networkdb"
	"shunt.transitlab.org/internal/scenario"
)

func main() {
	var (
		configPath   string
		scenarioPath string
		outputPath   string
		verbose      bool
		dumpSummary  bool
	)
	flag.StringVar(&configPath, "config", "", "Path to the JSON configuration file")
	flag.StringVar(&scenarioPath, "scenario", "", "Path to the scenario JSON file to apply")
	flag.StringVar(&outputPath, "output", "", "Path of the SQLite database to write (default: <data-path>/<scenario-id>.db; empty data-path skips export)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&dumpSummary, "dump", false, "Dump a summary of the resulting network to stdout")
	flag.Parse()

	if configPath == "" || scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: shunt -config config.json -scenario scenario.json [-output result.db]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	jsonConfig, err := appconf.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shunt: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if verbose || jsonConfig.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	config := jsonConfig.ToAppConfig()
	config.Verbose = config.Verbose || verbose
	gtfsConfig := gtfsload.FromConfigData(jsonConfig.ToGtfsConfigData())

	application := app.NewApplication(config, gtfsConfig, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, application, jsonConfig, scenarioPath, outputPath, dumpSummary); err != nil {
		logging.LogError(logger, "scenario run failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, application *app.Application, jsonConfig *appconf.JSONConfig, scenarioPath, outputPath string, dumpSummary bool) error {
	if outputPath == "" && jsonConfig.DataPath != "" {
		outputPath = defaultOutputPath(jsonConfig.DataPath, scenarioPath)
	}

	result, messages, err := application.RunScenario(ctx, scenarioPath, outputPath)
	printMessages(messages)
	if err != nil {
		return err
	}

	if dumpSummary {
		fmt.Print(networkdb.DumpNetworkSummary(result))
	}
	if outputPath != "" {
		fmt.Printf("wrote %s\n", outputPath)
	}
	return nil
}

// defaultOutputPath derives the database name from the scenario file name, so
// applying scenarios/skip-b.json lands in <data-path>/skip-b.db.
func defaultOutputPath(dataPath, scenarioPath string) string {
	base := filepath.Base(scenarioPath)
	name := base[:len(base)-len(filepath.Ext(base))]
	if name == "" {
		name = "scenario"
	}
	return filepath.Join(dataPath, name+".db")
}

func printMessages(messages []scenario.ModificationMessages) {
	for _, m := range messages {
		for _, w := range m.Warnings {
			fmt.Printf("%s: warning: %s\n", m.Type, w)
		}
		for _, info := range m.Info {
			fmt.Printf("%s: %s\n", m.Type, info)
		}
	}
}
