// Package prompts holds the prompt templates sent to the completion endpoint.
// Each builder embeds the current record state into a fixed-shape template;
// the model's free-text reply is parsed best-effort by the extract package.
package prompts

import (
	"fmt"
	"strings"
)

const generationTemplate = `You are an AI assistant describing wall art canvas designs for an online art shop.
Generate an SEO-optimized title, 13 tags, and a detailed description with storytelling
for this artwork: "%s". Mention visual details, style, emotion, and color tones.
Answer with labeled lines:
Title: ...
Description: ...
Tags: ...`

const refinementTemplate = `Refine and enhance this metadata for a wall art listing:
Title: %s
Description: %s
Tags: %s

Ensure the writing is vivid, artistic, and optimized for marketplace SEO.
Maintain emotional tone and descriptive detail. Answer with labeled
Title / Description / Tags lines.`

const scoringTemplate = `Rate the following wall art listing metadata on a scale of 1 to 10.
Provide:
1. Overall Score
2. One-line feedback
3. Optionally, an improved version (if score <7)

Metadata:
Title: %s
Description: %s
Tags: %s`

const improvementTemplate = `Improve the following wall art listing metadata for better storytelling, clarity, and SEO.
Keep it artistic and emotionally engaging.

%s`

const visualTemplate = `Analyze this artwork based on its filename and color palette:
Filename: %s
Colors: %s
Provide a short JSON summary with fields:
{
  "subject": "",
  "style": "",
  "mood": "",
  "tone": "",
  "keywords": []
}`

// Generation builds the first-pass description prompt for one asset.
func Generation(filename string) string {
	return fmt.Sprintf(generationTemplate, filename)
}

// Refinement builds the enhancement prompt from the current effective fields.
func Refinement(title, description, tags string) string {
	return fmt.Sprintf(refinementTemplate, title, description, tags)
}

// Scoring builds the quality inspection prompt from the effective fields.
func Scoring(title, description, tags string) string {
	return fmt.Sprintf(scoringTemplate, title, description, tags)
}

// Improvement builds the auto-rewrite prompt, seeded with the inspector's
// full first-pass assessment.
func Improvement(assessment string) string {
	return fmt.Sprintf(improvementTemplate, assessment)
}

// Visual builds the image analysis prompt from a filename and its sampled
// dominant color palette.
func Visual(filename string, colors []string) string {
	return fmt.Sprintf(visualTemplate, filename, strings.Join(colors, ", "))
}
