package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cosmicsol/listforge/internal/colors"
	"github.com/cosmicsol/listforge/internal/completion"
	"github.com/cosmicsol/listforge/internal/domain"
	"github.com/cosmicsol/listforge/internal/logger"
	"github.com/cosmicsol/listforge/internal/prompts"
	"github.com/cosmicsol/listforge/internal/store"
)

// Analyzer runs the visual analysis pass: dominant color sampling plus a
// model summary of subject and mood, merged into existing records as the
// opaque visual_analysis attachment.
type Analyzer struct {
	store     *store.RecordStore
	gateway   Gateway
	assetsDir string
	logger    *logger.Logger
}

// NewAnalyzer creates an analyzer over the given asset folder.
func NewAnalyzer(st *store.RecordStore, gw Gateway, assetsDir string, log *logger.Logger) *Analyzer {
	return &Analyzer{
		store:     st,
		gateway:   gw,
		assetsDir: assetsDir,
		logger:    log,
	}
}

func (a *Analyzer) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return a.logger
}

// visualSummary is the JSON shape requested from the model.
type visualSummary struct {
	Subject  string   `json:"subject"`
	Style    string   `json:"style"`
	Mood     string   `json:"mood"`
	Tone     string   `json:"tone"`
	Keywords []string `json:"keywords"`
}

// AnalyzeAll analyzes every image in the asset folder and overwrites the
// visual index. Records that exist for an analyzed asset get the analysis
// merged in; all other record fields are preserved.
func (a *Analyzer) AnalyzeAll(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{StartTime: time.Now()}

	if err := a.gateway.Ping(ctx); err != nil {
		return nil, fmt.Errorf("aborting visual analysis: %w", err)
	}

	entries, err := os.ReadDir(a.assetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan asset folder: %w", err)
	}

	var index []domain.VisualAnalysis
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsImageAsset(name) {
			continue
		}
		stats.Total++
		ctx := logger.SetAsset(ctx, name)

		palette, err := colors.Dominant(filepath.Join(a.assetsDir, name))
		if err != nil {
			a.log(ctx).WithError(err).Warn("Color extraction failed")
			palette = []string{"unknown"}
		}

		text, err := a.gateway.Complete(ctx, prompts.Visual(name, palette), completion.Options{
			MaxTokens:   300,
			Temperature: visualTemperature,
		})
		if err != nil {
			stats.Failed++
			a.log(ctx).WithError(err).Error("Failed to analyze image")
			continue
		}

		va := domain.VisualAnalysis{
			File:       name,
			Colors:     palette,
			AnalyzedAt: time.Now(),
		}
		applySummary(&va, text)
		index = append(index, va)

		a.mergeIntoRecord(ctx, name, &va)

		stats.Processed++
		a.log(ctx).Info("Visual analysis complete")
	}

	if err := a.store.WriteVisualIndex(index); err != nil {
		a.log(ctx).WithError(err).Error("Failed to write visual index")
	}

	stats.EndTime = time.Now()
	a.log(ctx).WithFields(stats.Fields()).Info("Visual analysis run completed")
	return stats, nil
}

// applySummary parses the model's JSON reply into the analysis, tolerating
// surrounding prose; unparseable output degrades to neutral values.
func applySummary(va *domain.VisualAnalysis, text string) {
	payload := text
	if start := strings.Index(payload, "{"); start >= 0 {
		if end := strings.LastIndex(payload, "}"); end > start {
			payload = payload[start : end+1]
		}
	}

	var sum visualSummary
	if err := json.Unmarshal([]byte(payload), &sum); err != nil {
		sum = visualSummary{Subject: "unknown", Style: "unknown", Mood: "neutral", Tone: "plain"}
	}
	va.Subject = sum.Subject
	va.Style = sum.Style
	va.Mood = sum.Mood
	va.Tone = sum.Tone
	va.Keywords = sum.Keywords
}

// mergeIntoRecord attaches the analysis to the asset's record when one
// exists. Assets without records are only listed in the visual index.
func (a *Analyzer) mergeIntoRecord(ctx context.Context, name string, va *domain.VisualAnalysis) {
	rec, err := a.store.Get(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.log(ctx).WithError(err).Warn("Failed to load record for merge")
		}
		return
	}
	rec.VisualAnalysis = va
	if err := a.store.Put(rec); err != nil {
		a.log(ctx).WithError(err).Error("Failed to merge visual analysis")
	}
}
