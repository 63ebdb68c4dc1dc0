package prompt

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Band is the qualitative rating the model gives each category.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

func ParseBand(s string) (Band, bool) {
	switch b := Band(strings.ToLower(strings.TrimSpace(s))); b {
	case BandLow, BandMedium, BandHigh:
		return b, true
	default:
		return "", false
	}
}

// Polarity is one of -1, 0 or 1.
type Polarity int

const (
	ProtectionistKey = "protectionist"
	ProgressiveKey   = "progressive"

	scoreSuffix = "_score"
)

func ScoreKey(category string) string {
	return category + scoreSuffix
}

type CategoryResult struct {
	Category string
	Band     Band
	// Score is the engine's number for the category, nil when no answer fed it.
	Score *float64
}

// Scorecard is the combined qualitative and quantitative result for one submission.
// Categories keep the catalog order.
type Scorecard struct {
	Categories    []CategoryResult
	Protectionist Polarity
	Progressive   Polarity
}

// MergeScores replaces every category score with the computed value.
func (s *Scorecard) MergeScores(scores map[string]float64) {
	for i := range s.Categories {
		if v, ok := scores[s.Categories[i].Category]; ok {
			s.Categories[i].Score = &v
			continue
		}
		s.Categories[i].Score = nil
	}
}

func (s Scorecard) Band(category string) (Band, bool) {
	for _, c := range s.Categories {
		if c.Category == category {
			return c.Band, true
		}
	}
	return "", false
}

// MarshalJSON writes a flat object in catalog order:
// {"<category>": band, "<category>_score": n, ..., "protectionist": p, "progressive": p}
func (s Scorecard) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value any) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	for _, c := range s.Categories {
		if err := write(c.Category, c.Band); err != nil {
			return nil, err
		}
		if c.Score != nil {
			if err := write(ScoreKey(c.Category), *c.Score); err != nil {
				return nil, err
			}
		}
	}
	if err := write(ProtectionistKey, s.Protectionist); err != nil {
		return nil, err
	}
	if err := write(ProgressiveKey, s.Progressive); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
