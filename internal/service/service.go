// Package service implements the pipeline stages: generation, refinement,
// quality inspection, and visual analysis. Stages process their item lists
// strictly one at a time; a connectivity failure aborts a stage at entry,
// a per-item failure is logged and skipped without touching siblings.
package service

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/cosmicsol/listforge/internal/completion"
	"github.com/cosmicsol/listforge/internal/logger"
)

// Gateway is the completion endpoint boundary the stages depend on.
type Gateway interface {
	Ping(ctx context.Context) error
	Complete(ctx context.Context, prompt string, opts completion.Options) (string, error)
}

// Per-stage sampling temperatures. The improve pass runs hot on purpose:
// it rewrites content the scorer already flagged as weak.
const (
	generateTemperature = 0.8
	refineTemperature   = 0.85
	scoreTemperature    = 0.6
	improveTemperature  = 0.9
	visualTemperature   = 0.7
)

// RunStats holds the outcome of one stage run.
type RunStats struct {
	Total     int
	Processed int
	Skipped   int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns the wall-clock duration of the run.
func (s *RunStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Fields renders the stats as log fields for the stage completion summary.
func (s *RunStats) Fields() logger.Fields {
	return logger.Fields{
		"total":     s.Total,
		"processed": s.Processed,
		"skipped":   s.Skipped,
		"failed":    s.Failed,
		"duration":  s.Duration().String(),
	}
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// IsImageAsset reports whether a file name looks like a processable asset.
func IsImageAsset(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}
