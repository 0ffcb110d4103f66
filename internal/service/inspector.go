package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cosmicsol/listforge/internal/completion"
	"github.com/cosmicsol/listforge/internal/domain"
	"github.com/cosmicsol/listforge/internal/extract"
	"github.com/cosmicsol/listforge/internal/logger"
	"github.com/cosmicsol/listforge/internal/prompts"
	"github.com/cosmicsol/listforge/internal/store"
)

const (
	reportName = "quality_report.txt"
	auditName  = "quality_audit.json"
)

// Inspector is the third pipeline stage: it scores every record's effective
// fields and auto-rewrites the description of records scored below the
// configured threshold.
type Inspector struct {
	store        *store.RecordStore
	gateway      Gateway
	logsDir      string
	improveBelow int
	logger       *logger.Logger
}

// NewInspector creates an inspector writing its reports into logsDir.
func NewInspector(st *store.RecordStore, gw Gateway, logsDir string, improveBelow int, log *logger.Logger) *Inspector {
	if improveBelow <= 0 {
		improveBelow = 7
	}
	return &Inspector{
		store:        st,
		gateway:      gw,
		logsDir:      logsDir,
		improveBelow: improveBelow,
		logger:       log,
	}
}

func (i *Inspector) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return i.logger
}

// InspectAll scores every record and persists the run's report twice: a flat
// human-readable form and a structured audit file, both full overwrites of
// the previous run. Records scored strictly below the threshold get a second
// completion call whose result overwrites only the refined description; a
// failure of that second call is non-fatal and the first-pass entry stands.
func (i *Inspector) InspectAll(ctx context.Context) (*RunStats, []domain.QualityEntry, error) {
	stats := &RunStats{StartTime: time.Now()}

	if err := i.gateway.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("aborting quality inspection: %w", err)
	}

	records, err := i.store.List()
	if err != nil {
		return nil, nil, err
	}
	stats.Total = len(records)

	report := make([]domain.QualityEntry, 0, len(records))
	for idx := range records {
		rec := records[idx]
		ctx := logger.SetAsset(ctx, rec.Filename)

		prompt := prompts.Scoring(rec.EffectiveTitle(), rec.EffectiveDescription(), rec.EffectiveTags())
		text, err := i.gateway.Complete(ctx, prompt, completion.Options{
			Temperature: scoreTemperature,
		})
		if err != nil {
			stats.Failed++
			i.log(ctx).WithError(err).Error("Failed to score metadata")
			continue
		}

		score := extract.ParseScore(text)
		report = append(report, domain.QualityEntry{
			File:     rec.Filename,
			Score:    score,
			Feedback: text,
		})
		i.log(ctx).WithField(logger.FieldScore, score.String()).Info("Metadata scored")

		if score.Valid && score.Value < i.improveBelow {
			i.improve(ctx, &rec, text)
		}
		stats.Processed++
	}

	if err := i.writeReports(report); err != nil {
		i.log(ctx).WithError(err).Error("Failed to write quality reports")
	}

	stats.EndTime = time.Now()
	i.log(ctx).WithFields(stats.Fields()).Info("Quality inspection completed")
	return stats, report, nil
}

// improve issues the auto-rewrite call for a weak record, seeded with the
// scorer's full assessment. Only the refined description is overwritten.
func (i *Inspector) improve(ctx context.Context, rec *domain.ListingRecord, assessment string) {
	improved, err := i.gateway.Complete(ctx, prompts.Improvement(assessment), completion.Options{
		Temperature: improveTemperature,
	})
	if err != nil {
		i.log(ctx).WithError(err).Warn("Auto-improve call failed, keeping first-pass result")
		return
	}
	if improved == "" {
		return
	}

	rec.RefinedDescription = improved
	if err := i.store.Put(rec); err != nil {
		i.log(ctx).WithError(err).Error("Failed to persist improved description")
		return
	}
	i.log(ctx).Info("Auto-improved weak metadata")
}

// writeReports persists the flat and structured reports.
func (i *Inspector) writeReports(report []domain.QualityEntry) error {
	var b strings.Builder
	for _, entry := range report {
		fmt.Fprintf(&b, "%s → %s\n%s\n\n", entry.File, entry.Score.String(), entry.Feedback)
	}
	if err := os.WriteFile(filepath.Join(i.logsDir, reportName), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write flat report: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(i.logsDir, auditName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write audit report: %w", err)
	}
	return nil
}
