// Package scoring turns raw survey ratings into per-category scores. It is pure: no I/O and
// no shared state, so the same inputs always produce the same scores.
package scoring

import (
	"strings"

	"github.com/thoas/go-funk"

	"github.com/policylens/survey-profiler/internal/store/model"
)

// Scale is the inclusive rating range of the survey.
type Scale struct {
	Min int
	Max int
}

var DefaultScale = Scale{Min: 1, Max: 5}

func (s Scale) Contains(rating int) bool {
	return rating >= s.Min && rating <= s.Max
}

// Reflect mirrors a rating about the scale midpoint (6-r on a 1..5 scale).
func (s Scale) Reflect(rating int) int {
	return s.Min + s.Max - rating
}

// NormalizeCategory folds case and collapses whitespace runs into a single underscore,
// so "Data  Privacy" and "data privacy" land in the same category.
func NormalizeCategory(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "_")
}

// Categories returns the normalized category names in order of first appearance.
func Categories(questions []model.Question) []string {
	names := make([]string, 0, len(questions))
	for _, q := range questions {
		if c := NormalizeCategory(q.Category); c != "" {
			names = append(names, c)
		}
	}
	return funk.UniqString(names)
}

type Engine struct {
	scale Scale
}

func NewEngine(scale Scale) *Engine {
	return &Engine{scale: scale}
}

type accumulator struct {
	sum    float64
	weight float64
}

// ComputeScores returns the weighted average of direction-adjusted ratings per category.
// Categories without any answered question are absent; a category whose answered questions
// carry no weight scores 0. Ratings outside the scale are ignored.
func (e *Engine) ComputeScores(questions []model.Question, responses model.Responses) map[string]float64 {
	acc := make(map[string]*accumulator)

	for _, q := range questions {
		resp, ok := responses[q.ID]
		if !ok || !e.scale.Contains(resp.Rating) {
			continue
		}
		category := NormalizeCategory(q.Category)
		if category == "" {
			continue
		}

		rating := resp.Rating
		if !q.Forward {
			rating = e.scale.Reflect(rating)
		}

		weight := q.Weight
		if weight < 0 {
			weight = 0
		}

		a, found := acc[category]
		if !found {
			a = &accumulator{}
			acc[category] = a
		}
		a.sum += float64(rating) * weight
		a.weight += weight
	}

	scores := make(map[string]float64, len(acc))
	for category, a := range acc {
		if a.weight == 0 {
			scores[category] = 0
			continue
		}
		scores[category] = a.sum / a.weight
	}
	return scores
}

// ComputeScores scores on the default 1..5 scale.
func ComputeScores(questions []model.Question, responses model.Responses) map[string]float64 {
	return NewEngine(DefaultScale).ComputeScores(questions, responses)
}
