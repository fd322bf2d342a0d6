// Package layout turns per-pane scores and window geometry into concrete
// pane rectangles. The calculator is deterministic: identical inputs
// always produce the identical layout.
package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/panefit/panefit/internal/model"
)

// Strategy selects the scalar weight used per pane.
type Strategy string

const (
	Balanced   Strategy = "balanced"
	Importance Strategy = "importance"
	Entropy    Strategy = "entropy"
	Activity   Strategy = "activity"
	Related    Strategy = "related"
)

// Mode selects the geometric arrangement.
type Mode string

const (
	Auto       Mode = "auto"
	Horizontal Mode = "horizontal"
	Vertical   Mode = "vertical"
	Tiled      Mode = "tiled"
)

// strategyWeights maps each strategy to its pure weighting function.
// Related is dispatched separately because it needs pairwise relevance;
// its entry here is the fallback used when no relevance signal exists.
var strategyWeights = map[Strategy]func(model.Score) float64{
	Balanced:   balancedWeight,
	Importance: func(s model.Score) float64 { return s.Importance },
	Entropy:    func(s model.Score) float64 { return s.Interestingness },
	Activity:   func(s model.Score) float64 { return s.Activity },
	Related:    balancedWeight,
}

func balancedWeight(s model.Score) float64 {
	return 0.4*s.Importance + 0.3*s.Interestingness + 0.3*s.Activity
}

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	if _, ok := strategyWeights[s]; !ok {
		return "", fmt.Errorf("%w: %q (valid: %s)",
			model.ErrUnknownStrategy, name, strings.Join(StrategyNames(), ", "))
	}
	return s, nil
}

// ParseMode validates a layout mode name.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(name); m {
	case Auto, Horizontal, Vertical, Tiled:
		return m, nil
	default:
		return "", fmt.Errorf("%w: layout mode %q (valid: auto, horizontal, vertical, tiled)",
			model.ErrUnknownStrategy, name)
	}
}

// StrategyNames returns all valid strategy names, sorted.
func StrategyNames() []string {
	names := make([]string, 0, len(strategyWeights))
	for s := range strategyWeights {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// StrategyInfo describes one strategy for CLI and server listings.
type StrategyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Strategies returns descriptions for every available strategy.
func Strategies() []StrategyInfo {
	return []StrategyInfo{
		{Name: "balanced", Description: "Weighted combination: 40% importance, 30% interestingness, 30% activity"},
		{Name: "importance", Description: "Content amount, code keywords, vocabulary richness"},
		{Name: "entropy", Description: "Information density - higher entropy content gets more space"},
		{Name: "activity", Description: "Recent activity - shell prompts, running commands"},
		{Name: "related", Description: "Favors panes related to the highest-scoring pane"},
	}
}
