package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/thushan/traigo/internal/app"
	"github.com/thushan/traigo/internal/config"
	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/env"
	"github.com/thushan/traigo/internal/logger"
	"github.com/thushan/traigo/internal/version"
	"github.com/thushan/traigo/pkg/format"
	"github.com/thushan/traigo/pkg/nerdstats"
)

func main() {
	os.Exit(run())
}

func run() int {
	startTime := time.Now()
	args := os.Args[1:]

	vlog := log.New(os.Stderr, "", 0)
	if len(args) > 0 && (args[0] == "version" || args[0] == "--version") {
		version.PrintVersionInfo(true, vlog)
		return constants.ExitOK
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}

	logInstance, styledLogger, cleanup, err := logger.NewWithTheme(buildLoggerConfig(cfg))
	if err != nil {
		logger.Fatal("Failed to initialise logger", "error", err)
	}
	defer cleanup()

	slog.SetDefault(logInstance)

	// setup: graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		styledLogger.Info("Cancellation signal received", "signal", sig.String())
		cancel()
	}()

	application, err := app.New(startTime, cfg, styledLogger)
	if err != nil {
		styledLogger.Error("Failed to initialise", "error", err)
		return app.ExitCodeFor(err)
	}

	runErr := application.Run(ctx, args)
	if runErr != nil {
		application.RenderError(runErr)
	}

	if env.GetEnvBoolOrDefault("TRAIGO_NERDSTATS", false) {
		reportProcessStats(styledLogger, startTime)
	}

	return app.ExitCodeFor(runErr)
}

func reportProcessStats(logger *logger.StyledLogger, startTime time.Time) {
	runtime.GC()

	stats := nerdstats.Snapshot(startTime)

	logger.Info("Process Memory Stats",
		"heap_alloc", format.Bytes(stats.HeapAlloc),
		"heap_sys", format.Bytes(stats.HeapSys),
		"heap_inuse", format.Bytes(stats.HeapInuse),
		"total_alloc", format.Bytes(stats.TotalAlloc),
		"memory_pressure", stats.GetMemoryPressure(),
	)

	if stats.NumGC > 0 {
		logger.Info("Garbage Collection Stats",
			"num_gc_cycles", stats.NumGC,
			"total_gc_time", format.Duration(stats.TotalGCTime),
			"avg_gc_pause", nerdstats.CalculateAverageGCPause(stats),
		)
	}

	logger.Info("Runtime Stats",
		"uptime", format.Duration(stats.Uptime),
		"go_version", stats.GoVersion,
		"num_goroutines", stats.NumGoroutines,
		"goroutine_health", stats.GetGoroutineHealthStatus(),
		"num_cpu", stats.NumCPU,
		"gomaxprocs", stats.GOMAXPROCS,
	)

	if buildInfo := stats.GetBuildInfoSummary(); len(buildInfo) > 0 {
		var buildArgs []any
		for key, value := range buildInfo {
			buildArgs = append(buildArgs, key, value)
		}
		logger.Info("Build Info", buildArgs...)
	}
}

// buildLoggerConfig layers TRAIGO_* env over the config file logging section.
func buildLoggerConfig(cfg *config.Config) *logger.Config {
	return &logger.Config{
		Level:      env.GetEnvOrDefault("TRAIGO_LOG_LEVEL", cfg.Logging.Level),
		FileOutput: env.GetEnvBoolOrDefault("TRAIGO_FILE_OUTPUT", cfg.Logging.FileOutput),
		LogDir:     env.GetEnvOrDefault("TRAIGO_LOG_DIR", cfg.Logging.Dir),
		MaxSize:    env.GetEnvIntOrDefault("TRAIGO_LOG_MAX_SIZE", 100),
		MaxBackups: env.GetEnvIntOrDefault("TRAIGO_LOG_MAX_BACKUPS", 5),
		MaxAge:     env.GetEnvIntOrDefault("TRAIGO_LOG_MAX_AGE", 30),
		Theme:      env.GetEnvOrDefault("TRAIGO_THEME", cfg.Logging.Theme),
	}
}
