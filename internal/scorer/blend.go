package scorer

import (
	"context"
	"fmt"
	"os"

	"github.com/panefit/panefit/internal/analyze"
	"github.com/panefit/panefit/internal/model"
	otelx "github.com/panefit/panefit/internal/otel"
)

// DefaultBlendRatio is the external weight used when none is configured.
const DefaultBlendRatio = 0.4

// Blender mixes external LLM judgment into locally computed scores.
// A zero Ratio means the default; Cache and Metrics may be nil.
type Blender struct {
	Scorer  Scorer
	Cache   *ScoreCache
	Ratio   float64
	Metrics *otelx.Metrics
}

// Enrich blends an external score into each pane's local score:
// final = (1-ratio)*local + ratio*external. Scoring failures degrade
// to the local score with a stderr warning; the analysis never fails
// because the API is down.
func (b *Blender) Enrich(ctx context.Context, panes []model.Pane, scores []model.Score) []model.Score {
	if b == nil || b.Scorer == nil {
		return scores
	}
	ratio := b.Ratio
	if ratio <= 0 {
		ratio = DefaultBlendRatio
	}

	byID := make(map[string]model.Pane, len(panes))
	for _, p := range panes {
		byID[p.ID] = p
	}

	out := make([]model.Score, len(scores))
	for i, local := range scores {
		pane, ok := byID[local.PaneID]
		if !ok {
			out[i] = local
			continue
		}
		external, ok := b.score(ctx, pane)
		if !ok {
			out[i] = local
			continue
		}
		out[i] = analyze.Blend(local, external, ratio)
	}
	return out
}

func (b *Blender) score(ctx context.Context, pane model.Pane) (model.ExternalScore, bool) {
	if b.Cache != nil {
		if cached, ok := b.Cache.Lookup(pane.ID, pane.Content); ok {
			b.Metrics.RecordCacheHit(ctx)
			return cached, true
		}
		b.Metrics.RecordCacheMiss(ctx)
	}

	external, err := b.Scorer.Score(ctx, pane.Content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: external scoring failed for %s: %v\n", pane.ID, err)
		return model.ExternalScore{}, false
	}
	b.Metrics.RecordLLMRequest(ctx, b.Scorer.Name(), b.Scorer.Model(),
		external.Usage.InputTokens, external.Usage.OutputTokens)

	if b.Cache != nil {
		b.Cache.Store(pane.ID, pane.Content, external)
	}
	return external, true
}
