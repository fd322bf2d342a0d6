// Package scorer sends pane content to an LLM for importance and
// interestingness judgment. Go code constructs the prompt and parses
// the response; the scores themselves come from the model. External
// scoring is always optional: callers blend it into local analysis and
// degrade to local-only when the API is unreachable.
package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/panefit/panefit/internal/model"
)

// Scorer sends pane content to an LLM and returns an external score.
type Scorer interface {
	// Score judges the given pane content.
	Score(ctx context.Context, content string) (model.ExternalScore, error)

	// Name returns the provider name (e.g., "anthropic", "openai").
	Name() string

	// Model returns the model name used for scoring.
	Model() string
}

// maxContentChars caps how much pane content is sent per request.
const maxContentChars = 3000

// scorePayload is the JSON contract the prompts ask the model for.
type scorePayload struct {
	Importance      float64  `json:"importance_score"`
	Interestingness float64  `json:"interestingness_score"`
	Summary         string   `json:"summary"`
	Topics          []string `json:"topics"`
}

// parseScore decodes a model response, tolerating markdown fences.
func parseScore(raw string) (model.ExternalScore, error) {
	text := stripMarkdownFences(raw)
	var payload scorePayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return model.ExternalScore{}, fmt.Errorf("failed to parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	return model.ExternalScore{
		Importance:      clamp01(payload.Importance),
		Interestingness: clamp01(payload.Interestingness),
		Summary:         payload.Summary,
		Topics:          payload.Topics,
	}, nil
}

// truncateContent keeps request sizes bounded for large scrollbacks.
func truncateContent(content string) string {
	if len(content) <= maxContentChars {
		return content
	}
	return content[:maxContentChars]
}

// stripMarkdownFences removes a surrounding ```...``` block, with or
// without a language tag, leaving inner content untouched.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		return strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
