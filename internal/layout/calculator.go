package layout

import (
	"fmt"
	"sort"

	"github.com/panefit/panefit/internal/model"
)

const goldenRatio = 1.618

// Default minimum pane dimensions along the split axis.
const (
	DefaultMinWidth  = 20
	DefaultMinHeight = 5
)

// weightFloor is assigned to panes whose strategy weight is zero or
// negative, so no pane ever loses all space.
const weightFloor = 0.01

// autoTiledAspect is the window aspect ratio above which auto mode
// prefers tiling for three or more panes.
const autoTiledAspect = 3.0

// Calculator computes window layouts from pane scores.
type Calculator struct {
	Strategy  Strategy
	Mode      Mode
	MinWidth  int
	MinHeight int

	// Relevance supplies pairwise scores for the related strategy,
	// keyed by ordered pane id pairs (a < b). When nil or missing a
	// pair, related falls back to balanced weighting.
	Relevance map[[2]string]model.Relevance
}

// New returns a Calculator with the default minimum pane sizes.
func New(strategy Strategy, mode Mode) *Calculator {
	return &Calculator{
		Strategy:  strategy,
		Mode:      mode,
		MinWidth:  DefaultMinWidth,
		MinHeight: DefaultMinHeight,
	}
}

// paneWeight pairs a pane id with its normalized strategy weight.
type paneWeight struct {
	id     string
	weight float64
}

// Calculate produces a layout for the given panes and scores. The
// resulting rectangles never overlap and their union covers the window
// exactly. Degenerate inputs (zero panes, impossible minimums) degrade
// to documented fallbacks instead of erroring; only contract violations
// (non-positive dimensions) fail.
func (c *Calculator) Calculate(panes []model.Pane, scores []model.Score, width, height int) (model.Layout, error) {
	if width < 1 {
		return model.Layout{}, fmt.Errorf("%w: window width %d", model.ErrBadDimensions, width)
	}
	if height < 1 {
		return model.Layout{}, fmt.Errorf("%w: window height %d", model.ErrBadDimensions, height)
	}
	for _, p := range panes {
		if err := p.Validate(); err != nil {
			return model.Layout{}, err
		}
	}

	layout := model.Layout{
		WindowWidth:  width,
		WindowHeight: height,
		Strategy:     string(c.Strategy),
	}
	if len(panes) == 0 {
		return layout, nil
	}

	weights, err := c.paneWeights(panes, scores)
	if err != nil {
		return model.Layout{}, err
	}

	switch c.resolveMode(len(panes), width, height) {
	case Horizontal:
		layout.Panes = c.layoutHorizontal(weights, width, height)
	case Vertical:
		layout.Panes = c.layoutVertical(weights, width, height)
	default:
		layout.Panes = c.layoutTiled(weights, width, height)
	}
	return layout, nil
}

// resolveMode maps auto onto a concrete arrangement: tiled for busy wide
// windows, otherwise a simple split along the window's longer axis.
func (c *Calculator) resolveMode(paneCount, width, height int) Mode {
	if c.Mode != Auto && c.Mode != "" {
		return c.Mode
	}
	aspect := float64(width) / float64(height)
	if paneCount > 2 && aspect > autoTiledAspect {
		return Tiled
	}
	if aspect >= 1 {
		return Horizontal
	}
	return Vertical
}

// paneWeights computes the normalized strategy weight per pane, ordered
// by weight descending with ties broken by pane id ascending.
func (c *Calculator) paneWeights(panes []model.Pane, scores []model.Score) ([]paneWeight, error) {
	strategy := c.Strategy
	if strategy == "" {
		strategy = Balanced
	}
	weigh, ok := strategyWeights[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownStrategy, strategy)
	}

	index := make(map[string]model.Score, len(scores))
	for _, s := range scores {
		index[s.PaneID] = s
	}
	// A pane without a score gets neutral metrics rather than an error.
	scoreFor := func(id string) model.Score {
		if s, ok := index[id]; ok {
			return s
		}
		return model.Score{PaneID: id, Importance: 0.5, Interestingness: 0.5, Activity: 0.5}
	}

	weights := make([]paneWeight, len(panes))
	if strategy == Related {
		focus := c.focusPane(panes, scoreFor)
		for i, p := range panes {
			w := weigh(scoreFor(p.ID))
			if p.ID != focus {
				if rel, ok := c.relevanceBetween(focus, p.ID); ok {
					w = 0.5*w + 0.5*rel
				}
			}
			weights[i] = paneWeight{id: p.ID, weight: w}
		}
	} else {
		for i, p := range panes {
			weights[i] = paneWeight{id: p.ID, weight: weigh(scoreFor(p.ID))}
		}
	}

	total := 0.0
	for i := range weights {
		if weights[i].weight <= 0 {
			weights[i].weight = weightFloor
		}
		total += weights[i].weight
	}
	for i := range weights {
		weights[i].weight /= total
	}

	sort.SliceStable(weights, func(i, j int) bool {
		if weights[i].weight != weights[j].weight {
			return weights[i].weight > weights[j].weight
		}
		return weights[i].id < weights[j].id
	})
	return weights, nil
}

// focusPane returns the id of the highest-importance pane, ties broken
// by pane id ascending.
func (c *Calculator) focusPane(panes []model.Pane, scoreFor func(string) model.Score) string {
	focus := ""
	best := -1.0
	for _, p := range panes {
		imp := scoreFor(p.ID).Importance
		if imp > best || (imp == best && p.ID < focus) {
			best = imp
			focus = p.ID
		}
	}
	return focus
}

func (c *Calculator) relevanceBetween(a, b string) (float64, bool) {
	if c.Relevance == nil {
		return 0, false
	}
	if b < a {
		a, b = b, a
	}
	rel, ok := c.Relevance[[2]string{a, b}]
	return rel.Combined, ok
}

func (c *Calculator) layoutHorizontal(weights []paneWeight, width, height int) []model.Rect {
	widths := apportion(weights, width, c.minWidth())
	rects := make([]model.Rect, len(weights))
	x := 0
	for i, pw := range weights {
		rects[i] = model.Rect{ID: pw.id, X: x, Y: 0, Width: widths[i], Height: height}
		x += widths[i]
	}
	return rects
}

func (c *Calculator) layoutVertical(weights []paneWeight, width, height int) []model.Rect {
	heights := apportion(weights, height, c.minHeight())
	rects := make([]model.Rect, len(weights))
	y := 0
	for i, pw := range weights {
		rects[i] = model.Rect{ID: pw.id, X: 0, Y: y, Width: width, Height: heights[i]}
		y += heights[i]
	}
	return rects
}

// layoutTiled gives the highest-weight pane a golden-ratio share of the
// window width and stacks the remaining panes in the leftover column.
func (c *Calculator) layoutTiled(weights []paneWeight, width, height int) []model.Rect {
	if len(weights) <= 1 {
		return c.layoutHorizontal(weights, width, height)
	}

	mainWidth := int(float64(width) / goldenRatio)
	sideWidth := width - mainWidth

	rects := make([]model.Rect, 0, len(weights))
	rects = append(rects, model.Rect{ID: weights[0].id, X: 0, Y: 0, Width: mainWidth, Height: height})

	side := make([]paneWeight, len(weights)-1)
	copy(side, weights[1:])
	total := 0.0
	for _, pw := range side {
		total += pw.weight
	}
	for i := range side {
		side[i].weight /= total
	}

	heights := apportion(side, height, c.minHeight())
	y := 0
	for i, pw := range side {
		rects = append(rects, model.Rect{ID: pw.id, X: mainWidth, Y: y, Width: sideWidth, Height: heights[i]})
		y += heights[i]
	}
	return rects
}

// apportion distributes total cells proportionally to the normalized
// weights (ordered descending), then clamps every pane up to min.
// The rounding remainder goes to the highest-weight pane. When the
// minimums do not fit, panes shrink lowest-weight-first down to one
// cell, and if even that is infeasible the space is divided equally.
// The returned sizes always sum exactly to total.
func apportion(weights []paneWeight, total, min int) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []int{total}
	}

	if min*n > total {
		return shrinkOrEqual(weights, total, min)
	}

	sizes := make([]int, n)
	sum := 0
	for i, pw := range weights {
		sizes[i] = int(float64(total) * pw.weight)
		sum += sizes[i]
	}
	sizes[0] += total - sum

	// Clamp small panes up to the minimum, reclaiming the deficit from
	// above-minimum panes starting with the lowest weight.
	deficit := 0
	for i := range sizes {
		if sizes[i] < min {
			deficit += min - sizes[i]
			sizes[i] = min
		}
	}
	for i := n - 1; i >= 0 && deficit > 0; i-- {
		avail := sizes[i] - min
		if avail <= 0 {
			continue
		}
		take := avail
		if take > deficit {
			take = deficit
		}
		sizes[i] -= take
		deficit -= take
	}
	return sizes
}

// shrinkOrEqual handles windows too small for every pane's minimum:
// start everyone at the minimum, shrink lowest-weight panes down to one
// cell until the total fits, and fall back to equal division when even
// one-cell panes overflow the axis.
func shrinkOrEqual(weights []paneWeight, total, min int) []int {
	n := len(weights)
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = min
	}
	need := min*n - total
	for i := n - 1; i >= 0 && need > 0; i-- {
		reducible := sizes[i] - 1
		if reducible <= 0 {
			continue
		}
		take := reducible
		if take > need {
			take = need
		}
		sizes[i] -= take
		need -= take
	}
	if need > 0 {
		base, rem := total/n, total%n
		for i := range sizes {
			sizes[i] = base
			if i < rem {
				sizes[i]++
			}
		}
	}
	return sizes
}

func (c *Calculator) minWidth() int {
	if c.MinWidth > 0 {
		return c.MinWidth
	}
	return DefaultMinWidth
}

func (c *Calculator) minHeight() int {
	if c.MinHeight > 0 {
		return c.MinHeight
	}
	return DefaultMinHeight
}
