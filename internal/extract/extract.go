// Package extract pulls named fields out of unstructured completion text.
// Extraction is best-effort by design: a missing field degrades to an empty
// or fallback value and never fails the pipeline.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cosmicsol/listforge/internal/domain"
)

// TagFallback is returned when no tags label is found in the text.
const TagFallback = "art, wall decor, canvas, home, interior"

// labelRe matches any recognized field label followed by a colon.
var labelRe = regexp.MustCompile(`(?i)\b(title|name|description|details|tags|keywords)\s*:`)

var newlineRe = regexp.MustCompile(`\r?\n`)

// scoreRe finds the first "10" or single digit token in free text.
var scoreRe = regexp.MustCompile(`10|[0-9]`)

var synonyms = map[string][]string{
	"title":       {"title", "name"},
	"description": {"description", "details"},
	"tags":        {"tags", "keywords"},
}

// Field scans text for a line labeled with one of the field's recognized
// synonyms and returns everything after the label up to the next recognized
// label or end of text, with line breaks collapsed to single spaces.
// Unmatched fields return "" for title/description and TagFallback for tags.
func Field(text, name string) string {
	accepted, ok := synonyms[name]
	if !ok {
		return ""
	}

	matches := labelRe.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		label := strings.ToLower(text[m[2]:m[3]])
		if !contains(accepted, label) {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		value := text[m[1]:end]
		value = newlineRe.ReplaceAllString(value, " ")
		return strings.TrimSpace(value)
	}

	if name == "tags" {
		return TagFallback
	}
	return ""
}

// ParseScore extracts a quality score from free-text model output: the first
// "10" or single digit encountered. Texts with no score token yield an
// unscored value.
func ParseScore(text string) domain.Score {
	token := scoreRe.FindString(text)
	if token == "" {
		return domain.Score{}
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return domain.Score{}
	}
	return domain.Score{Value: n, Valid: true}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
