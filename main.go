package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"peoplesearch/internal/config"
	"peoplesearch/internal/eventbus"
	"peoplesearch/internal/logging"
	"peoplesearch/internal/metrics"
	"peoplesearch/internal/people"
	"peoplesearch/internal/search"
	"peoplesearch/internal/ui"
)

type options struct {
	configPath  string
	peopleFile  string
	logFile     string
	logLevel    string
	metricsFile string
	debounce    time.Duration
	delay       time.Duration
	grace       time.Duration
	writeConfig bool
	writePeople string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("peoplesearch", pflag.ContinueOnError)
	var opts options
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default "+config.DefaultPath()+")")
	flags.StringVarP(&opts.peopleFile, "people", "p", "", "TOML file with the people to search; reloaded when it changes")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	flags.DurationVar(&opts.debounce, "debounce", search.DefaultDebounce, "Quiet time after typing before a search starts")
	flags.DurationVar(&opts.delay, "delay", search.DefaultProcessingDelay, "Simulated lookup latency")
	flags.DurationVar(&opts.grace, "grace", search.DefaultGracePeriod, "How long search keeps running with nobody watching")
	flags.BoolVar(&opts.writeConfig, "write-config", false, "Save the effective config and exit")
	flags.StringVar(&opts.writePeople, "write-people", "", "Save the people being searched to this file and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// A missing .env is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	configSvc := config.NewService(opts.configPath, nil)
	cfg, err := configSvc.Load()
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return err
	}
	applyFlags(cfg, flags, opts)
	if err := configSvc.Validate(cfg); err != nil {
		return err
	}

	if opts.writeConfig {
		if err := configSvc.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", configSvc.Path())
		return nil
	}

	dataset := people.Seed()
	if cfg.PeopleFile != "" {
		dataset, err = people.LoadFile(cfg.PeopleFile)
		if err != nil {
			return err
		}
	}

	if opts.writePeople != "" {
		if err := people.WriteFile(opts.writePeople, dataset); err != nil {
			return err
		}
		fmt.Printf("Wrote %d people to %s\n", len(dataset), opts.writePeople)
		return nil
	}

	// Set up logging
	logger, err := logging.NewFileLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	bus := eventbus.New(logger)
	defer bus.Close()
	logging.Attach(bus, logger)
	collector := metrics.New()
	collector.Attach(bus)

	logger.Info("starting",
		zap.String("config", configSvc.Path()),
		zap.String("people_file", cfg.PeopleFile),
		zap.Int("people", len(dataset)),
	)

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := search.New(ctx, dataset,
		search.WithDebounce(cfg.Search.Debounce()),
		search.WithProcessingDelay(cfg.Search.ProcessingDelay()),
		search.WithGracePeriod(cfg.Search.GracePeriod()),
		search.WithEventBus(bus),
	)

	g, gctx := errgroup.WithContext(ctx)

	model := ui.NewModel(store)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(gctx),
	)

	if cfg.PeopleFile != "" {
		watcher := people.NewWatcher(cfg.PeopleFile, store.SetDataset, func(err error) {
			bus.Publish(eventbus.ErrorEvent{Message: "failed to reload people file", Err: err})
		})
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	g.Go(func() error {
		// Stop the other goroutines once the screen is gone
		defer cancel()
		defer model.Close()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("error running program: %w", err)
		}
		return nil
	})

	err = g.Wait()
	cancel()
	store.Wait()
	bus.Close()
	logger.Info("exited", zap.Error(err))

	if cfg.MetricsFile != "" {
		if werr := collector.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Error("failed to write metrics", zap.Error(werr))
			err = errors.Join(err, werr)
		}
	}
	return err
}

// applyFlags copies explicitly set flags over cfg
func applyFlags(cfg *config.Config, flags *pflag.FlagSet, opts options) {
	if flags.Changed("people") {
		cfg.PeopleFile = opts.peopleFile
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if flags.Changed("debounce") {
		cfg.Search.DebounceMillis = int(opts.debounce / time.Millisecond)
	}
	if flags.Changed("delay") {
		cfg.Search.ProcessingDelayMillis = int(opts.delay / time.Millisecond)
	}
	if flags.Changed("grace") {
		cfg.Search.GracePeriodMillis = int(opts.grace / time.Millisecond)
	}
}
