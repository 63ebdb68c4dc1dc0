package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrMalformedModelOutput = errors.New("malformed model output")

var fencedJSON = regexp.MustCompile("(?is)```json[ \\t]*\\r?\\n?(.*?)```")

// Parse extracts the scorecard from the first fenced json block of reply. The summary is the
// reply without that block. Echoed <category>_score values are ignored; callers merge the
// computed scores afterwards.
func Parse(reply string, categories []string) (*Scorecard, string, error) {
	loc := fencedJSON.FindStringSubmatchIndex(reply)
	if loc == nil {
		return nil, "", fmt.Errorf("%w: no fenced json block", ErrMalformedModelOutput)
	}
	body := reply[loc[2]:loc[3]]
	summary := joinSummary(reply[:loc[0]], reply[loc[1]:])

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	card := &Scorecard{Categories: make([]CategoryResult, 0, len(categories))}
	for _, c := range categories {
		raw, ok := fields[c]
		if !ok {
			return nil, "", fmt.Errorf("%w: missing band for %q", ErrMalformedModelOutput, c)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, "", fmt.Errorf("%w: band for %q is not a string", ErrMalformedModelOutput, c)
		}
		band, ok := ParseBand(s)
		if !ok {
			return nil, "", fmt.Errorf("%w: invalid band %q for %q", ErrMalformedModelOutput, s, c)
		}
		card.Categories = append(card.Categories, CategoryResult{Category: c, Band: band})
	}

	var err error
	if card.Protectionist, err = parsePolarity(fields, ProtectionistKey); err != nil {
		return nil, "", err
	}
	if card.Progressive, err = parsePolarity(fields, ProgressiveKey); err != nil {
		return nil, "", err
	}

	return card, summary, nil
}

// joinSummary keeps the text around the json block as separate paragraphs.
func joinSummary(before, after string) string {
	before, after = strings.TrimSpace(before), strings.TrimSpace(after)
	if before == "" || after == "" {
		return before + after
	}
	return before + "\n\n" + after
}

func parsePolarity(fields map[string]json.RawMessage, key string) (Polarity, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrMalformedModelOutput, key)
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		// tolerate quoted numbers such as "-1"
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedModelOutput, key)
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedModelOutput, key)
		}
	}

	if f != math.Trunc(f) || f < -1 || f > 1 {
		return 0, fmt.Errorf("%w: %q out of range: %v", ErrMalformedModelOutput, key, f)
	}
	return Polarity(f), nil
}
