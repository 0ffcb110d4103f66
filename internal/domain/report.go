package domain

import (
	"encoding/json"
	"strconv"
)

// Score is a quality score in [0,10] parsed from free-text model output.
// Valid is false when no score token could be found; such records are
// reported as unscored ("N/A").
type Score struct {
	Value int
	Valid bool
}

// String renders the score for the flat report.
func (s Score) String() string {
	if !s.Valid {
		return "N/A"
	}
	return strconv.Itoa(s.Value)
}

// MarshalJSON emits the numeric value, or "N/A" for unscored entries.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return json.Marshal("N/A")
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts either a number or the "N/A" marker.
func (s *Score) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		s.Value = n
		s.Valid = true
		return nil
	}
	s.Value = 0
	s.Valid = false
	return nil
}

// QualityEntry is one item of an inspection run's report.
type QualityEntry struct {
	File     string `json:"file"`
	Score    Score  `json:"score"`
	Feedback string `json:"feedback"`
}
