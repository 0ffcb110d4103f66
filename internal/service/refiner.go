package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cosmicsol/listforge/internal/completion"
	"github.com/cosmicsol/listforge/internal/extract"
	"github.com/cosmicsol/listforge/internal/logger"
	"github.com/cosmicsol/listforge/internal/prompts"
	"github.com/cosmicsol/listforge/internal/store"
)

// Refiner is the second pipeline stage: it rewrites existing records through
// the completion endpoint, keeping the original fields and a history trail.
type Refiner struct {
	store   *store.RecordStore
	gateway Gateway
	logger  *logger.Logger
}

// NewRefiner creates a refiner over the given store.
func NewRefiner(st *store.RecordStore, gw Gateway, log *logger.Logger) *Refiner {
	return &Refiner{store: st, gateway: gw, logger: log}
}

func (r *Refiner) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return r.logger
}

// RefineAll refines every record in the store from its current effective
// fields, so re-running refines the refinement. Each refinement appends a
// pre-refinement snapshot to history before the record is overwritten; a
// per-item failure leaves the previous state untouched.
func (r *Refiner) RefineAll(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{StartTime: time.Now()}

	if err := r.gateway.Ping(ctx); err != nil {
		return nil, fmt.Errorf("aborting refinement: %w", err)
	}

	records, err := r.store.List()
	if err != nil {
		return nil, err
	}
	stats.Total = len(records)

	for i := range records {
		rec := records[i]
		ctx := logger.SetAsset(ctx, rec.Filename)

		prompt := prompts.Refinement(rec.EffectiveTitle(), rec.EffectiveDescription(), rec.EffectiveTags())
		text, err := r.gateway.Complete(ctx, prompt, completion.Options{
			Temperature: refineTemperature,
		})
		if err != nil {
			stats.Failed++
			r.log(ctx).WithError(err).Error("Failed to refine metadata")
			continue
		}

		// Snapshot the pre-refinement state before overwriting.
		snapshot := rec
		if err := r.store.AppendHistory(rec.Filename, &snapshot); err != nil {
			stats.Failed++
			r.log(ctx).WithError(err).Error("Failed to write history snapshot")
			continue
		}

		now := time.Now()
		rec.RefinedTitle = extract.Field(text, "title")
		rec.RefinedDescription = extract.Field(text, "description")
		rec.RefinedTags = extract.Field(text, "tags")
		rec.RefinedAt = &now

		if err := r.store.Put(&rec); err != nil {
			stats.Failed++
			r.log(ctx).WithError(err).Error("Failed to persist refined record")
			continue
		}
		stats.Processed++
		r.log(ctx).Info("Metadata refined")
	}

	stats.EndTime = time.Now()
	r.log(ctx).WithFields(stats.Fields()).Info("Refinement completed")
	return stats, nil
}
