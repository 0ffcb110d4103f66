package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/cosmicsol/listforge/internal/completion"
	"github.com/cosmicsol/listforge/internal/config"
	"github.com/cosmicsol/listforge/internal/logger"
	"github.com/cosmicsol/listforge/internal/service"
	"github.com/cosmicsol/listforge/internal/store"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       logger.DefaultConfig().Level,
		Format:      logger.DefaultConfig().Format,
		ServiceName: "listforge-pipeline",
	})
	logger.SetDefaultLogger(appLogger)

	stage := flag.String("stage", "generate", "Pipeline stage to run: generate, refine, inspect, analyze, rebuild")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.EnsureDirs(); err != nil {
		appLogger.WithError(err).Fatal("Failed to prepare working directories")
	}

	// Re-create the logger now that the logs directory is known.
	logCfg := logger.DefaultConfig()
	logCfg.ServiceName = "listforge-pipeline"
	logCfg.LogFile = filepath.Join(cfg.Paths.Logs, "listforge.log")
	appLogger = logger.New(logCfg)
	logger.SetDefaultLogger(appLogger)

	recordStore, err := store.New(cfg.Paths.Metadata, cfg.Paths.History)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to open record store")
	}

	gateway := completion.NewClient(&completion.Config{
		Endpoint:    cfg.Completion.Endpoint,
		Model:       cfg.Completion.Model,
		MaxTokens:   cfg.Completion.MaxTokens,
		Temperature: cfg.Completion.Temperature,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	ctx = logger.SetRunID(ctx, uuid.New().String())
	ctx = logger.SetStage(ctx, *stage)

	switch *stage {
	case "generate":
		gen := service.NewGenerator(recordStore, gateway, cfg.Paths.Assets, appLogger)
		if _, err := gen.GenerateBatch(ctx); err != nil {
			appLogger.WithError(err).Fatal("Generation batch failed")
		}

	case "refine":
		ref := service.NewRefiner(recordStore, gateway, appLogger)
		if _, err := ref.RefineAll(ctx); err != nil {
			appLogger.WithError(err).Fatal("Refinement failed")
		}

	case "inspect":
		ins := service.NewInspector(recordStore, gateway, cfg.Paths.Logs, cfg.Inspector.ImproveBelow, appLogger)
		if _, _, err := ins.InspectAll(ctx); err != nil {
			appLogger.WithError(err).Fatal("Quality inspection failed")
		}

	case "analyze":
		ana := service.NewAnalyzer(recordStore, gateway, cfg.Paths.Assets, appLogger)
		if _, err := ana.AnalyzeAll(ctx); err != nil {
			appLogger.WithError(err).Fatal("Visual analysis failed")
		}

	case "rebuild":
		count, err := recordStore.Rebuild()
		if err != nil {
			appLogger.WithError(err).Fatal("Index rebuild failed")
		}
		appLogger.WithField(logger.FieldCount, count).Info("Master index rebuilt")

	default:
		appLogger.WithField("stage", *stage).Fatal("Unknown pipeline stage")
	}
}
