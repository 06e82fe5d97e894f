package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/apexsim/apexsim/internal/config"
	"github.com/apexsim/apexsim/internal/dispatcher"
	"github.com/apexsim/apexsim/internal/garage"
	"github.com/apexsim/apexsim/internal/logging"
	"github.com/apexsim/apexsim/internal/run"
	"github.com/apexsim/apexsim/internal/storage"
	"github.com/apexsim/apexsim/internal/telemetry"
	"github.com/apexsim/apexsim/internal/worker"

	"github.com/rs/zerolog"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	AppName string = "apexsim"
)

// global variables
var (
	SessionStartTime time.Time = time.Now()

	// Logger is the zerolog logger shared by every service
	Logger zerolog.Logger

	// closeLogs releases the session log file, set by setup()
	closeLogs func() error

	// Services
	eventDispatcher  *dispatcher.Dispatcher
	workerManager    *worker.Manager
	storageBackend   storage.Backend
	telemetryManager *telemetry.Manager

	// runCtx carries the active run identity for telemetry tagging
	runCtx *run.Context = run.NewContext()

	// registry holds every vehicle loaded this session
	registry *garage.Registry = garage.NewRegistry()

	// mainCtx is cancelled on SIGINT/SIGTERM so a long sweep can stop early
	mainCtx context.Context = context.Background()
)

// setup loads config and brings up logging. Config loading failure is
// not fatal, the registered defaults carry the session.
func setup() error {
	configErr := config.Load(".")

	logger, closer, err := logging.Setup(logging.Options{
		Level:          config.GetLogLevel(),
		LogsDir:        config.GetString("logsDir"),
		AppName:        AppName,
		SessionStart:   SessionStartTime.UTC(),
		GraylogEnabled: config.GetGraylogConfig().Enabled,
		GraylogAddress: config.GetGraylogConfig().Address,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	Logger = logger
	closeLogs = closer

	if configErr != nil {
		Logger.Warn().Err(configErr).Msg("Failed to load config, using defaults!")
	} else {
		Logger.Info().Str("file", config.FileUsed()).Msg("Loaded config")
	}
	return nil
}

func initStorage() error {
	storageCfg := config.GetStorageConfig()

	var err error
	storageBackend, err = storage.NewBackend(storageCfg, Logger)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := storageBackend.Init(); err != nil {
		return fmt.Errorf("failed to init %s storage: %w", storageBackend.Name(), err)
	}
	Logger.Info().Str("backend", storageBackend.Name()).Msg("Storage initialization complete.")
	return nil
}

func initTelemetry() {
	tm := telemetry.NewManager(config.GetInfluxConfig(), Logger)
	err := tm.Connect()
	if errors.Is(err, telemetry.ErrDisabled) {
		Logger.Info().Msg("Telemetry export disabled")
		return
	}
	if err != nil {
		Logger.Error().Err(err).Msg("Telemetry unavailable, sweep points will not be exported")
		return
	}
	telemetryManager = tm
}

func startServices() error {
	dispatcherLogger := logging.NewDispatcherLogger(Logger)
	var err error
	eventDispatcher, err = dispatcher.New(dispatcherLogger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	workerManager, err = worker.NewManager(worker.Dependencies{
		Backend:   storageBackend,
		Telemetry: telemetryManager,
		RunCtx:    runCtx,
		Logger:    Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create worker manager: %w", err)
	}
	workerManager.RegisterHandlers(eventDispatcher)
	workerManager.StartFlusher(config.GetSweepConfig().FlushInterval)
	Logger.Debug().Msg("Worker handlers registered with dispatcher")
	return nil
}

// shutdown drains the dispatcher, flushes spooled points and closes
// every service. Safe to call with partially initialized services.
func shutdown() {
	if eventDispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := eventDispatcher.Shutdown(ctx); err != nil {
			Logger.Error().Err(err).Msg("Dispatcher shutdown failed")
		}
		cancel()
	}
	if workerManager != nil {
		workerManager.StopFlusher()
		if err := workerManager.FlushPoints(); err != nil {
			Logger.Error().Err(err).Msg("Final point flush failed")
		}
	}
	if telemetryManager != nil {
		telemetryManager.Close()
	}
	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error().Err(err).Msg("Storage close failed")
		}
	}
	if closeLogs != nil {
		closeLogs()
	}
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}
	command := strings.ToLower(args[0])

	// version and help don't need services
	if command == "version" {
		printVersion()
		return
	}
	if command == "help" {
		printUsage()
		return
	}

	if err := setup(); err != nil {
		panic(err)
	}
	Logger.Info().
		Str("version", CurrentVersion).
		Str("build", BuildDate).
		Msg("Starting up...")

	if err := initStorage(); err != nil {
		panic(err)
	}
	initTelemetry()
	if err := startServices(); err != nil {
		panic(err)
	}

	var stop context.CancelFunc
	mainCtx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if command == "validate" {
		err = runValidate(args[1:])
	} else if command == "inspect" {
		err = runInspect(args[1:])
	} else if command == "sweep" {
		err = runSweep(args[1:])
	} else if command == "track" {
		err = runTrack(args[1:])
	} else if command == "garage" {
		err = runGarage(args[1:])
	} else if command == "recent" {
		err = runRecent(args[1:])
	} else if command == "backup" {
		err = runBackup(args[1:])
	} else {
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
	}

	if err != nil {
		Logger.Error().Err(err).Str("command", command).Msg("Command failed")
		shutdown()
		os.Exit(1)
	}
	shutdown()
}
