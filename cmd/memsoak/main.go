package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/killianstorm/ariane/internal/config"
	"github.com/killianstorm/ariane/internal/metrics"
	"github.com/killianstorm/ariane/internal/model"
	"github.com/killianstorm/ariane/internal/server"
	"github.com/killianstorm/ariane/internal/storage/sram"
	"github.com/killianstorm/ariane/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.Uint("word_bits", cfg.Store.WordBits),
		zap.Uint("depth", cfg.Store.Depth),
		zap.Int("workers", cfg.Soak.Workers),
		zap.Uint64("operations", cfg.Soak.Operations))

	// Build the store
	geom, err := model.NewGeometry(cfg.Store.WordBits, cfg.Store.Depth)
	if err != nil {
		logger.Fatal("Invalid geometry", zap.Error(err))
	}

	m := metrics.NewMetrics("memsoak")

	st, err := store.New(geom, store.Options{
		RegisteredOutput: cfg.Store.RegisteredOutput,
		Init: sram.Options{
			Policy:  sram.InitPolicy(cfg.Store.Init.Policy),
			Seed:    cfg.Store.Init.Seed,
			Pattern: cfg.Store.Init.Pattern,
		},
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		logger.Fatal("Failed to create store", zap.Error(err))
	}

	// Run the soak driver
	driver := newSoakDriver(st, &cfg.Soak, logger)

	// Serve metrics if enabled
	if cfg.Metrics.Enabled {
		ms := server.NewMetricsServer(
			&server.MetricsServerConfig{Port: cfg.Metrics.Port, Path: cfg.Metrics.Path},
			m,
			driver.ScrubStatus,
			logger,
		)
		if err := ms.Start(); err != nil {
			logger.Fatal("Failed to start metrics server", zap.Error(err))
		}
		defer ms.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully...")
		cancel()
	}()

	report, err := driver.Run(ctx)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		logger.Fatal("Soak run failed", zap.Error(err))
	}

	logger.Info("Soak run completed",
		zap.Uint64("writes", report.Writes),
		zap.Uint64("reads", report.Reads),
		zap.Uint64("faults_injected", report.FaultsInjected),
		zap.Uint64("mismatches", report.Mismatches))

	if report.Mismatches > 0 {
		os.Exit(1)
	}
}

// initLogger initializes the zap logger from logging configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", cfg.Level, err)
	}
	zapCfg.Level = level

	return zapCfg.Build()
}
