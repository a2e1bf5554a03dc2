package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calimport/internal/config"
	"calimport/internal/ics"
	"calimport/internal/importer"
	appLog "calimport/internal/log"
	"calimport/internal/model"
	"calimport/internal/query"
	"calimport/internal/schedule"
	"calimport/internal/store"
)

// flagConfig holds CLI flag values; non-empty values override the config file.
type flagConfig struct {
	icalFile    string
	configPath  string
	objectstore string
	graphlayer  string
	token       string
	importOnly  bool
	watch       string
	debug       bool
}

func main() {
	flags := parseFlags()

	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("calimport starting", "version", "0.1.0")

	if flags.icalFile == "" {
		fmt.Fprintln(os.Stderr, "usage: calimport --ical-file <path> [--objectstore <url>] [--graphlayer <url>] [--import-only]")
		os.Exit(1)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI overrides.
	if flags.objectstore != "" {
		conf.ObjectStore = flags.objectstore
	}
	if flags.graphlayer != "" {
		conf.GraphLayer = flags.graphlayer
	}
	if flags.token != "" {
		conf.GraphLayerToken = flags.token
	}
	if flags.watch != "" {
		conf.Watch = flags.watch
	}

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone in config", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"ical_file", flags.icalFile,
		"objectstore", conf.ObjectStore,
		"graphlayer", conf.GraphLayer,
		"timezone", conf.Timezone,
		"watch", conf.Watch,
		"import_only", flags.importOnly,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	st := store.NewRemote(store.RemoteConfig{
		ObjectStoreURL:   conf.ObjectStore,
		ObjectStoreToken: conf.ObjectStoreToken,
		GraphLayerURL:    conf.GraphLayer,
		GraphLayerToken:  conf.GraphLayerToken,
		Timeout:          conf.HTTPTimeout(),
	})

	runImport := func(ctx context.Context) error {
		events, skipped, err := parseFile(flags.icalFile, loc)
		if err != nil {
			return err
		}
		res, err := importer.New(st).Run(ctx, events)
		if err != nil {
			return err
		}
		printSummary(res, skipped)
		if res.Imported == 0 && res.Parsed > 0 {
			return fmt.Errorf("no events imported (%d failed)", res.Failed)
		}
		return nil
	}

	if conf.Watch != "" {
		if err := schedule.Watch(ctx, conf.Watch, runImport); err != nil {
			appLog.Error("watch mode failed", err)
			os.Exit(1)
		}
		appLog.Info("calimport exiting")
		return
	}

	if err := runImport(ctx); err != nil {
		appLog.Error("import failed", err)
		os.Exit(1)
	}

	if flags.importOnly {
		appLog.Info("import complete, exiting (--import-only)")
		return
	}

	prompt := query.NewPrompt(query.NewEngine(st), os.Stdin, os.Stdout)
	if err := prompt.Run(ctx); err != nil && ctx.Err() == nil {
		appLog.Error("query loop failed", err)
		os.Exit(1)
	}

	// Give shutdown lines a moment to flush.
	time.Sleep(50 * time.Millisecond)
	appLog.Info("calimport exiting")
}

func parseFile(path string, loc *time.Location) ([]model.Event, int, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read ical file: %w", err)
	}
	events, failures, err := ics.Parse(body, loc)
	if err != nil {
		return nil, 0, err
	}
	return events, len(failures), nil
}

func printSummary(res importer.Result, skippedBlocks int) {
	fmt.Println()
	fmt.Println("Import-Zusammenfassung")
	fmt.Println("----------------------")
	fmt.Printf("  Lauf:        %s\n", res.RunID)
	fmt.Printf("  Ereignisse:  %d gelesen, %d importiert, %d fehlgeschlagen\n", res.Parsed, res.Imported, res.Failed)
	if skippedBlocks > 0 {
		fmt.Printf("  Übersprungen (fehlerhafte Blöcke): %d\n", skippedBlocks)
	}
	fmt.Printf("  Struktur:    %d Jahre, %d Monate, %d Wochen, %d Tage\n", res.Years, res.Months, res.Weeks, res.Days)
	for _, f := range res.Failures {
		fmt.Printf("  FEHLER %s (%s): %v\n", f.UID, f.Summary, f.Err)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.icalFile, "ical-file", "", "Path to the iCal file to import")
	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.objectstore, "objectstore", "", "Object store base URL (overrides config)")
	flag.StringVar(&cfg.graphlayer, "graphlayer", "", "Graph layer base URL (overrides config)")
	flag.StringVar(&cfg.token, "token", "", "Graph layer API token (overrides config)")
	flag.BoolVar(&cfg.importOnly, "import-only", false, "Only import, skip the interactive query prompt")
	flag.StringVar(&cfg.watch, "watch", "", "Cron schedule for periodic re-import (overrides config)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.config/calimport/config.yaml"
	}
	return "./calimport.yaml"
}
