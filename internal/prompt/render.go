package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/policylens/survey-profiler/internal/scoring"
	"github.com/policylens/survey-profiler/internal/store/model"
)

// OpeningSentence starts every summary.
const OpeningSentence = "Based on your answers, here is a picture of how you think about technology and society."

// FormatResponses renders the answered questions, in catalog order, as plain text.
func FormatResponses(questions []model.Question, responses model.Responses) string {
	var sb strings.Builder
	for _, q := range questions {
		resp, ok := responses[q.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "Question %d (%s): %s\n", q.ID, scoring.NormalizeCategory(q.Category), strings.TrimSpace(q.Prompt))
		fmt.Fprintf(&sb, "Rating: %d\n", resp.Rating)
		if resp.Explanation != nil && strings.TrimSpace(*resp.Explanation) != "" {
			fmt.Fprintf(&sb, "Explanation: %s\n", strings.TrimSpace(*resp.Explanation))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Render builds the instruction text for the model. The reply format is shown as a fenced
// json example so the model echoes the exact keys Parse expects.
func Render(formatted string, categories []string, scores map[string]float64) string {
	var sb strings.Builder

	sb.WriteString("You are analysing a respondent's answers to a survey about technology policy.\n\n")
	sb.WriteString("Survey answers:\n")
	sb.WriteString(formatted)
	sb.WriteString("\n\n")

	sb.WriteString("Computed category scores (weighted averages on the rating scale):\n")
	for _, c := range categories {
		if v, ok := scores[c]; ok {
			fmt.Fprintf(&sb, "- %s: %s\n", c, strconv.FormatFloat(v, 'f', 2, 64))
		} else {
			fmt.Fprintf(&sb, "- %s: no answers\n", c)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("Instructions:\n")
	fmt.Fprintf(&sb, "1. Write a short narrative summary that opens with exactly this sentence: %q\n", OpeningSentence)
	sb.WriteString("   Address the respondent directly as \"you\". Never name or guess the name of the respondent.\n")
	fmt.Fprintf(&sb, "2. Rate each category as one of %s, %s or %s: %s.\n",
		BandLow, BandMedium, BandHigh, strings.Join(categories, ", "))
	fmt.Fprintf(&sb, "3. Rate the %q and %q axes as -1, 0 or 1.\n", ProtectionistKey, ProgressiveKey)
	sb.WriteString("4. End the response with a JSON object inside a fenced code block labeled json. ")
	sb.WriteString("Use one key per category with its band, the two axis keys, and a <category>_score key ")
	sb.WriteString("holding the computed score. Nothing may follow the code block.\n\n")

	sb.WriteString("Example of the final block:\n")
	sb.WriteString(exampleBlock(categories, scores))
	sb.WriteString("\n")

	return sb.String()
}

func exampleBlock(categories []string, scores map[string]float64) string {
	card := Scorecard{Categories: make([]CategoryResult, 0, len(categories))}
	for _, c := range categories {
		card.Categories = append(card.Categories, CategoryResult{Category: c, Band: BandMedium})
	}
	card.MergeScores(scores)

	raw, _ := json.Marshal(card)
	var indented bytes.Buffer
	if err := json.Indent(&indented, raw, "", "  "); err != nil {
		indented.Reset()
		indented.Write(raw)
	}
	return "```json\n" + indented.String() + "\n```"
}
