package analyze

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/panefit/panefit/internal/model"
)

// Weights holds the combination weights for the headline scores.
// Weights are an immutable value passed into the Analyzer at construction,
// so multiple profiles can coexist (e.g. in tests).
type Weights struct {
	// Importance terms. These sum to 1 in the default profile.
	ContentAmount float64 `yaml:"content_amount"`
	Activity      float64 `yaml:"activity"`
	UniqueWords   float64 `yaml:"unique_words"`
	Keywords      float64 `yaml:"keywords"`
	RecentChange  float64 `yaml:"recent_change"`
	Entropy       float64 `yaml:"entropy"`

	// Interestingness terms.
	InterestEntropy   float64 `yaml:"interest_entropy"`
	InterestSurprisal float64 `yaml:"interest_surprisal"`

	// ActiveBonus is added to the importance of the focused pane.
	ActiveBonus float64 `yaml:"active_bonus"`
}

// DefaultWeights returns the published weight table.
func DefaultWeights() Weights {
	return Weights{
		ContentAmount:     0.2,
		Activity:          0.2,
		UniqueWords:       0.15,
		Keywords:          0.15,
		RecentChange:      0.15,
		Entropy:           0.15,
		InterestEntropy:   0.5,
		InterestSurprisal: 0.5,
		ActiveBonus:       0.2,
	}
}

// Analyzer turns a batch of pane snapshots into comparable scores.
// It holds only immutable configuration, so a single Analyzer is safe
// to use from concurrent call sites.
type Analyzer struct {
	scorer  Scorer
	weights Weights
}

// New returns an Analyzer using the default weight table.
func New() *Analyzer {
	return NewWithWeights(DefaultWeights())
}

// NewWithWeights returns an Analyzer with a custom weight profile.
func NewWithWeights(w Weights) *Analyzer {
	return &Analyzer{weights: w}
}

// Analyze scores a batch of panes. The result is order-preserving and
// length-preserving: result[i].PaneID == panes[i].ID for all i.
//
// Raw measures are computed per pane, then each measure is min-max
// normalized independently across the batch. A batch where every pane
// ties on a measure (including a single-pane batch) normalizes that
// measure to 0.5 so the combination weights stay well-defined.
func (a *Analyzer) Analyze(panes []model.Pane) ([]model.Score, error) {
	return a.AnalyzeWithPrior(panes, nil)
}

// AnalyzeWithPrior is Analyze with change detection: prior maps pane id
// to the content hash from a previous snapshot. A pane whose content
// hash differs from its prior gets a recent-change raw score of 0.3.
// The analyzer itself keeps no history; callers own that state.
func (a *Analyzer) AnalyzeWithPrior(panes []model.Pane, prior map[string]string) ([]model.Score, error) {
	for _, p := range panes {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	if len(panes) == 0 {
		return []model.Score{}, nil
	}

	scores := make([]model.Score, len(panes))
	for i, p := range panes {
		s := model.Score{
			PaneID:        p.ID,
			CharEntropy:   a.scorer.CharEntropy(p.Content),
			WordEntropy:   a.scorer.WordEntropy(p.Content),
			Surprisal:     a.scorer.Surprisal(p.Content),
			Activity:      a.scorer.Activity(p.Content),
			KeywordRatio:  a.scorer.KeywordRatio(p.Content),
			UniqueWords:   a.scorer.UniqueWordRatio(p.Content),
			ContentAmount: a.scorer.ContentAmount(p.Content),
			WordCount:     len(tokenize(p.Content)),
			LineCount:     countLines(p.Content),
			ContentHash:   ContentHash(p.Content),
		}
		if prev, ok := prior[p.ID]; ok && prev != s.ContentHash {
			s.ChangeScore = 0.3
		}
		scores[i] = s
	}

	normalize(scores, func(s *model.Score) (float64, *float64) { return s.CharEntropy, &s.NormEntropy })
	normalize(scores, func(s *model.Score) (float64, *float64) { return s.Surprisal, &s.NormSurprisal })
	normalize(scores, func(s *model.Score) (float64, *float64) { return s.Activity, &s.NormActivity })
	normalize(scores, func(s *model.Score) (float64, *float64) { return s.KeywordRatio, &s.NormKeywords })
	normalize(scores, func(s *model.Score) (float64, *float64) { return s.UniqueWords, &s.NormUniqueWords })
	normalize(scores, func(s *model.Score) (float64, *float64) { return s.ContentAmount, &s.NormContentAmount })
	normalize(scores, func(s *model.Score) (float64, *float64) { return s.ChangeScore, &s.NormChange })

	w := a.weights
	for i := range scores {
		s := &scores[i]
		s.Importance = w.ContentAmount*s.NormContentAmount +
			w.Activity*s.NormActivity +
			w.UniqueWords*s.NormUniqueWords +
			w.Keywords*s.NormKeywords +
			w.RecentChange*s.NormChange +
			w.Entropy*s.NormEntropy
		if panes[i].Active {
			s.Importance += w.ActiveBonus
		}
		s.Importance = clamp01(s.Importance)

		interestTotal := w.InterestEntropy + w.InterestSurprisal
		if interestTotal > 0 {
			s.Interestingness = clamp01((w.InterestEntropy*s.NormEntropy +
				w.InterestSurprisal*s.NormSurprisal) / interestTotal)
		}
	}

	return scores, nil
}

// RelevanceMatrix computes pairwise relevance for every pane pair.
// Keys are ordered (a, b) with a < b by pane id.
func (a *Analyzer) RelevanceMatrix(panes []model.Pane) map[[2]string]model.Relevance {
	matrix := make(map[[2]string]model.Relevance)
	for i := range panes {
		for j := i + 1; j < len(panes); j++ {
			p, q := panes[i], panes[j]
			if q.ID < p.ID {
				p, q = q, p
			}
			matrix[[2]string{p.ID, q.ID}] = a.scorer.Relevance(p, q)
		}
	}
	return matrix
}

// Relevance returns the pairwise relevance for two panes.
func (a *Analyzer) Relevance(p, q model.Pane) model.Relevance {
	return a.scorer.Relevance(p, q)
}

// Blend folds an externally supplied score into a locally computed one:
// final = (1-ratio)·local + ratio·external. Ratio is clamped to [0,1].
func Blend(local model.Score, external model.ExternalScore, ratio float64) model.Score {
	r := clamp01(ratio)
	local.Importance = clamp01((1-r)*local.Importance + r*external.Importance)
	local.Interestingness = clamp01((1-r)*local.Interestingness + r*external.Interestingness)
	return local
}

// normalize min-max scales one measure across the batch into its Norm
// field. All-tied batches get 0.5 to avoid a divide by zero.
func normalize(scores []model.Score, field func(*model.Score) (float64, *float64)) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range scores {
		v, _ := field(&scores[i])
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for i := range scores {
		v, out := field(&scores[i])
		if hi == lo {
			*out = 0.5
		} else {
			*out = (v - lo) / (hi - lo)
		}
	}
}

func countLines(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return len(strings.Split(strings.TrimSpace(text), "\n"))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// SortByImportance returns pane ids ordered by importance descending,
// ties broken by pane id ascending. Used by grouping and strategies that
// need a deterministic focus order.
func SortByImportance(scores []model.Score) []string {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := scores[idx[i]], scores[idx[j]]
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		return a.PaneID < b.PaneID
	})
	ids := make([]string, len(idx))
	for i, k := range idx {
		ids[i] = scores[k].PaneID
	}
	return ids
}

// ScoreIndex builds a pane-id lookup for a score slice.
func ScoreIndex(scores []model.Score) map[string]model.Score {
	m := make(map[string]model.Score, len(scores))
	for _, s := range scores {
		m[s.PaneID] = s
	}
	return m
}

// FormatScore renders the headline metrics for terminal output.
func FormatScore(s model.Score) string {
	return fmt.Sprintf("imp=%.3f int=%.3f act=%.3f ent=%.3f",
		s.Importance, s.Interestingness, s.Activity, s.CharEntropy)
}
