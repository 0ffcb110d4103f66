package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cosmicsol/listforge/internal/completion"
	"github.com/cosmicsol/listforge/internal/domain"
	"github.com/cosmicsol/listforge/internal/extract"
	"github.com/cosmicsol/listforge/internal/logger"
	"github.com/cosmicsol/listforge/internal/prompts"
	"github.com/cosmicsol/listforge/internal/store"
)

// Generator is the first pipeline stage: it turns new assets into listing
// records.
type Generator struct {
	store     *store.RecordStore
	gateway   Gateway
	assetsDir string
	logger    *logger.Logger
}

// NewGenerator creates a generator over the given asset folder.
func NewGenerator(st *store.RecordStore, gw Gateway, assetsDir string, log *logger.Logger) *Generator {
	return &Generator{
		store:     st,
		gateway:   gw,
		assetsDir: assetsDir,
		logger:    log,
	}
}

func (g *Generator) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return g.logger
}

// GenerateBatch scans the asset folder and generates metadata for every
// asset not yet present in the store. A connectivity failure aborts the whole
// batch before any completion call; a per-item failure skips that asset and
// leaves it eligible for the next run.
func (g *Generator) GenerateBatch(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{StartTime: time.Now()}

	if err := g.gateway.Ping(ctx); err != nil {
		return nil, fmt.Errorf("aborting generation batch: %w", err)
	}

	entries, err := os.ReadDir(g.assetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan asset folder: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsImageAsset(name) {
			continue
		}
		stats.Total++

		exists, err := g.store.Exists(name)
		if err != nil {
			stats.Failed++
			g.log(ctx).WithField(logger.FieldAsset, name).WithError(err).Error("Failed to check store")
			continue
		}
		if exists {
			stats.Skipped++
			g.log(ctx).WithField(logger.FieldAsset, name).Debug("Skipping already processed asset")
			continue
		}

		if err := g.generate(ctx, name); err != nil {
			stats.Failed++
			g.log(ctx).WithField(logger.FieldAsset, name).WithError(err).Error("Failed to generate metadata")
			continue
		}
		stats.Processed++
		g.log(ctx).WithField(logger.FieldAsset, name).Info("Metadata created")
	}

	stats.EndTime = time.Now()
	g.log(ctx).WithFields(stats.Fields()).Info("Generation batch completed")
	return stats, nil
}

// GenerateOne generates metadata for a single asset path. It is the entry
// point used by watch mode and re-checks idempotency itself, since it
// bypasses the batch partition step.
func (g *Generator) GenerateOne(ctx context.Context, path string) error {
	name := filepath.Base(path)
	ctx = logger.SetAsset(ctx, name)

	exists, err := g.store.Exists(name)
	if err != nil {
		return fmt.Errorf("failed to check store: %w", err)
	}
	if exists {
		g.log(ctx).Debug("Skipping already processed asset")
		return nil
	}

	if err := g.generate(ctx, name); err != nil {
		return err
	}
	g.log(ctx).Info("Metadata created")
	return nil
}

// generate runs one asset through prompt, completion, extraction, and
// persistence.
func (g *Generator) generate(ctx context.Context, name string) error {
	text, err := g.gateway.Complete(ctx, prompts.Generation(name), completion.Options{
		Temperature: generateTemperature,
	})
	if err != nil {
		return err
	}

	rec := &domain.ListingRecord{
		Filename:    name,
		Title:       extract.Field(text, "title"),
		Description: extract.Field(text, "description"),
		Tags:        extract.Field(text, "tags"),
		CreatedAt:   time.Now(),
	}
	return g.store.Put(rec)
}
