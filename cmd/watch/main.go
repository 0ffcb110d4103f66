package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cosmicsol/listforge/internal/completion"
	"github.com/cosmicsol/listforge/internal/config"
	"github.com/cosmicsol/listforge/internal/logger"
	"github.com/cosmicsol/listforge/internal/service"
	"github.com/cosmicsol/listforge/internal/store"
	"github.com/cosmicsol/listforge/internal/watcher"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       logger.DefaultConfig().Level,
		Format:      logger.DefaultConfig().Format,
		ServiceName: "listforge-watch",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.EnsureDirs(); err != nil {
		appLogger.WithError(err).Fatal("Failed to prepare working directories")
	}

	logCfg := logger.DefaultConfig()
	logCfg.ServiceName = "listforge-watch"
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

	gen := service.NewGenerator(recordStore, gateway, cfg.Paths.Assets, appLogger)
	w := watcher.New(cfg.Paths.Assets, cfg.Watcher.QueueSize, gen.GenerateOne, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, stopping watch mode...")
		cancel()
	}()

	ctx = logger.SetStage(ctx, "watch")
	if err := w.Run(ctx); err != nil {
		appLogger.WithError(err).Fatal("Watch mode failed")
	}
}
