package domain

import "time"

// ListingRecord is the structured listing metadata for one asset. The
// refined_* fields are an overlay written by the refinement stage; consumers
// read the effective value (refined when present, original otherwise).
type ListingRecord struct {
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        string    `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`

	RefinedTitle       string     `json:"refined_title,omitempty"`
	RefinedDescription string     `json:"refined_description,omitempty"`
	RefinedTags        string     `json:"refined_tags,omitempty"`
	RefinedAt          *time.Time `json:"refined_at,omitempty"`

	// VisualAnalysis is attached by the visual analysis pass. The core
	// pipeline preserves it on merge and does not interpret it.
	VisualAnalysis *VisualAnalysis `json:"visual_analysis,omitempty"`
}

// EffectiveTitle returns the refined title when present, else the original.
func (r *ListingRecord) EffectiveTitle() string {
	if r.RefinedTitle != "" {
		return r.RefinedTitle
	}
	return r.Title
}

// EffectiveDescription returns the refined description when present, else the original.
func (r *ListingRecord) EffectiveDescription() string {
	if r.RefinedDescription != "" {
		return r.RefinedDescription
	}
	return r.Description
}

// EffectiveTags returns the refined tags when present, else the original.
func (r *ListingRecord) EffectiveTags() string {
	if r.RefinedTags != "" {
		return r.RefinedTags
	}
	return r.Tags
}

// Refined reports whether the record has been through refinement.
func (r *ListingRecord) Refined() bool {
	return r.RefinedAt != nil
}

// VisualAnalysis is the output of the image analysis pass for one asset:
// sampled dominant colors plus the model's summary of subject and mood.
type VisualAnalysis struct {
	File       string    `json:"file"`
	Colors     []string  `json:"colors"`
	Subject    string    `json:"subject"`
	Style      string    `json:"style"`
	Mood       string    `json:"mood"`
	Tone       string    `json:"tone"`
	Keywords   []string  `json:"keywords"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}
