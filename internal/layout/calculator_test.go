package layout

import (
	"errors"
	"reflect"
	"testing"

	"github.com/panefit/panefit/internal/model"
)

func testPane(id string) model.Pane {
	return model.Pane{ID: id, Width: 80, Height: 24}
}

func testScore(id string, importance, interestingness, activity float64) model.Score {
	return model.Score{
		PaneID:          id,
		Importance:      importance,
		Interestingness: interestingness,
		Activity:        activity,
	}
}

func mustPane(t *testing.T, layout model.Layout, id string) model.Rect {
	t.Helper()
	r, ok := layout.Pane(id)
	if !ok {
		t.Fatalf("pane %s missing from layout: %+v", id, layout.Panes)
	}
	return r
}

// checkTiling fails unless the rectangles partition the window exactly:
// no overlaps, total area equals the window area, everything in bounds.
func checkTiling(t *testing.T, layout model.Layout) {
	t.Helper()
	area := 0
	for i, r := range layout.Panes {
		if r.Width < 0 || r.Height < 0 || r.X < 0 || r.Y < 0 {
			t.Fatalf("pane %s has negative geometry: %+v", r.ID, r)
		}
		if r.X+r.Width > layout.WindowWidth || r.Y+r.Height > layout.WindowHeight {
			t.Fatalf("pane %s exceeds window bounds: %+v", r.ID, r)
		}
		area += r.Area()
		for _, other := range layout.Panes[i+1:] {
			if r.X < other.X+other.Width && other.X < r.X+r.Width &&
				r.Y < other.Y+other.Height && other.Y < r.Y+r.Height {
				t.Fatalf("panes %s and %s overlap: %+v vs %+v", r.ID, other.ID, r, other)
			}
		}
	}
	want := layout.WindowWidth * layout.WindowHeight
	if area != want {
		t.Fatalf("panes cover area %d, window is %d", area, want)
	}
}

func TestCalculateImportanceProportions(t *testing.T) {
	calc := New(Importance, Horizontal)
	panes := []model.Pane{testPane("%1"), testPane("%2")}
	scores := []model.Score{
		testScore("%1", 0.8, 0, 0),
		testScore("%2", 0.2, 0, 0),
	}

	layout, err := calc.Calculate(panes, scores, 200, 50)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	checkTiling(t, layout)

	a := mustPane(t, layout, "%1")
	b := mustPane(t, layout, "%2")
	if a.Width != 160 || b.Width != 40 {
		t.Errorf("widths = %d/%d, want 160/40", a.Width, b.Width)
	}
	if a.Height != 50 || b.Height != 50 {
		t.Errorf("heights = %d/%d, want full window", a.Height, b.Height)
	}
	if a.X != 0 || b.X != 160 {
		t.Errorf("x positions = %d/%d, want 0/160", a.X, b.X)
	}
}

func TestCalculateSinglePaneFillsWindow(t *testing.T) {
	calc := New(Balanced, Auto)
	layout, err := calc.Calculate([]model.Pane{testPane("%1")}, nil, 120, 40)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	want := model.Rect{ID: "%1", X: 0, Y: 0, Width: 120, Height: 40}
	if len(layout.Panes) != 1 || layout.Panes[0] != want {
		t.Errorf("layout = %+v, want single rect %+v", layout.Panes, want)
	}
}

func TestCalculateZeroPanes(t *testing.T) {
	calc := New(Balanced, Auto)
	layout, err := calc.Calculate(nil, nil, 100, 30)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(layout.Panes) != 0 {
		t.Errorf("expected empty layout, got %+v", layout.Panes)
	}
	if layout.WindowWidth != 100 || layout.WindowHeight != 30 {
		t.Errorf("window dims not carried: %+v", layout)
	}
}

func TestCalculateTilesEveryMode(t *testing.T) {
	panes := []model.Pane{testPane("%1"), testPane("%2"), testPane("%3"), testPane("%4")}
	scores := []model.Score{
		testScore("%1", 0.9, 0.4, 0.8),
		testScore("%2", 0.5, 0.9, 0.1),
		testScore("%3", 0.2, 0.2, 0.6),
		testScore("%4", 0.7, 0.5, 0.5),
	}
	for _, mode := range []Mode{Auto, Horizontal, Vertical, Tiled} {
		for _, strategy := range []Strategy{Balanced, Importance, Entropy, Activity, Related} {
			calc := New(strategy, mode)
			layout, err := calc.Calculate(panes, scores, 240, 60)
			if err != nil {
				t.Fatalf("%s/%s: %v", strategy, mode, err)
			}
			if len(layout.Panes) != len(panes) {
				t.Fatalf("%s/%s: got %d rects, want %d", strategy, mode, len(layout.Panes), len(panes))
			}
			checkTiling(t, layout)
		}
	}
}

func TestCalculateAutoModeSelection(t *testing.T) {
	two := []model.Pane{testPane("%1"), testPane("%2")}
	three := append(two, testPane("%3"))

	calc := New(Balanced, Auto)

	// Wide window, three panes: tiled, main pane gets the golden share.
	layout, err := calc.Calculate(three, nil, 200, 50)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	checkTiling(t, layout)
	width := 200
	mainWidth := int(float64(width) / goldenRatio)
	if layout.Panes[0].Width != mainWidth {
		t.Errorf("main pane width = %d, want %d", layout.Panes[0].Width, mainWidth)
	}

	// Wide window, two panes: side-by-side split.
	layout, err = calc.Calculate(two, nil, 200, 50)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if layout.Panes[0].Height != 50 || layout.Panes[1].Height != 50 {
		t.Errorf("expected horizontal split, got %+v", layout.Panes)
	}

	// Tall window: stacked split.
	layout, err = calc.Calculate(two, nil, 50, 200)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if layout.Panes[0].Width != 50 || layout.Panes[1].Width != 50 {
		t.Errorf("expected vertical split, got %+v", layout.Panes)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	calc := New(Balanced, Auto)
	panes := []model.Pane{testPane("%3"), testPane("%1"), testPane("%2")}
	scores := []model.Score{
		testScore("%1", 0.5, 0.5, 0.5),
		testScore("%2", 0.5, 0.5, 0.5),
		testScore("%3", 0.5, 0.5, 0.5),
	}

	first, err := calc.Calculate(panes, scores, 200, 50)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	second, err := calc.Calculate(panes, scores, 200, 50)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("layouts differ between identical calls:\n%+v\n%+v", first, second)
	}
	// Tied weights resolve by pane id, not input order.
	if first.Panes[0].ID != "%1" {
		t.Errorf("tie-break gave %s first, want %%1", first.Panes[0].ID)
	}
}

func TestCalculateImportanceMonotonic(t *testing.T) {
	calc := New(Importance, Horizontal)
	panes := []model.Pane{testPane("%1"), testPane("%2"), testPane("%3")}
	scores := func(a float64) []model.Score {
		return []model.Score{
			testScore("%1", a, 0, 0),
			testScore("%2", 0.3, 0, 0),
			testScore("%3", 0.2, 0, 0),
		}
	}

	low, err := calc.Calculate(panes, scores(0.5), 300, 50)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	high, err := calc.Calculate(panes, scores(0.7), 300, 50)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	lowRect := mustPane(t, low, "%1")
	highRect := mustPane(t, high, "%1")
	if highRect.Width < lowRect.Width {
		t.Errorf("raising importance shrank the pane: %d -> %d", lowRect.Width, highRect.Width)
	}
}

func TestCalculateMinimumsClamp(t *testing.T) {
	calc := New(Importance, Horizontal)
	panes := []model.Pane{testPane("%1"), testPane("%2")}
	scores := []model.Score{
		testScore("%1", 0.99, 0, 0),
		testScore("%2", 0.01, 0, 0),
	}

	layout, err := calc.Calculate(panes, scores, 200, 50)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	checkTiling(t, layout)
	if got := mustPane(t, layout, "%2").Width; got != DefaultMinWidth {
		t.Errorf("low-weight pane width = %d, want clamped to %d", got, DefaultMinWidth)
	}
}

func TestCalculateCrampedWindow(t *testing.T) {
	calc := New(Balanced, Horizontal)
	panes := []model.Pane{testPane("%1"), testPane("%2"), testPane("%3")}

	// 30 columns cannot hold three 20-column minimums.
	layout, err := calc.Calculate(panes, nil, 30, 10)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	checkTiling(t, layout)
	for _, r := range layout.Panes {
		if r.Width < 1 {
			t.Errorf("pane %s collapsed to width %d", r.ID, r.Width)
		}
	}
}

func TestCalculateRelatedPullsRelevantPanes(t *testing.T) {
	panes := []model.Pane{testPane("%1"), testPane("%2"), testPane("%3")}
	scores := []model.Score{
		testScore("%1", 0.9, 0.5, 0.5),
		testScore("%2", 0.4, 0.5, 0.5),
		testScore("%3", 0.4, 0.5, 0.5),
	}
	calc := New(Related, Horizontal)
	calc.Relevance = map[[2]string]model.Relevance{
		{"%1", "%2"}: {PaneA: "%1", PaneB: "%2", Combined: 0.9},
		{"%1", "%3"}: {PaneA: "%1", PaneB: "%3", Combined: 0.1},
	}

	layout, err := calc.Calculate(panes, scores, 300, 50)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	checkTiling(t, layout)
	related := mustPane(t, layout, "%2")
	unrelated := mustPane(t, layout, "%3")
	if related.Width <= unrelated.Width {
		t.Errorf("pane related to the focus should be wider: %%2=%d %%3=%d",
			related.Width, unrelated.Width)
	}
}

func TestCalculateErrors(t *testing.T) {
	calc := New(Balanced, Auto)
	if _, err := calc.Calculate([]model.Pane{testPane("%1")}, nil, 0, 50); !errors.Is(err, model.ErrBadDimensions) {
		t.Errorf("zero width: err = %v, want ErrBadDimensions", err)
	}
	if _, err := calc.Calculate([]model.Pane{testPane("%1")}, nil, 200, -1); !errors.Is(err, model.ErrBadDimensions) {
		t.Errorf("negative height: err = %v, want ErrBadDimensions", err)
	}
	if _, err := calc.Calculate([]model.Pane{{ID: "%1", Width: 0, Height: 24}}, nil, 200, 50); !errors.Is(err, model.ErrBadDimensions) {
		t.Errorf("bad pane: err = %v, want ErrBadDimensions", err)
	}

	bogus := New(Strategy("chaotic"), Auto)
	if _, err := bogus.Calculate([]model.Pane{testPane("%1"), testPane("%2")}, nil, 200, 50); !errors.Is(err, model.ErrUnknownStrategy) {
		t.Errorf("unknown strategy: err = %v, want ErrUnknownStrategy", err)
	}
}

func TestApportion(t *testing.T) {
	weights := func(ws ...float64) []paneWeight {
		out := make([]paneWeight, len(ws))
		for i, w := range ws {
			out[i] = paneWeight{id: string(rune('a' + i)), weight: w}
		}
		return out
	}

	tests := []struct {
		name  string
		w     []paneWeight
		total int
		min   int
		want  []int
	}{
		{"exact proportions", weights(0.8, 0.2), 200, 20, []int{160, 40}},
		{"remainder to heaviest", weights(0.5, 0.3, 0.2), 101, 5, []int{51, 30, 20}},
		{"clamp up to minimum", weights(0.99, 0.01), 200, 20, []int{180, 20}},
		{"shrink below minimum", weights(0.5, 0.3, 0.2), 7, 5, []int{5, 1, 1}},
		{"equal division fallback", weights(0.5, 0.3, 0.2), 2, 5, []int{1, 1, 0}},
		{"single pane takes all", weights(1.0), 37, 20, []int{37}},
	}
	for _, tt := range tests {
		got := apportion(tt.w, tt.total, tt.min)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: apportion = %v, want %v", tt.name, got, tt.want)
		}
		sum := 0
		for _, s := range got {
			sum += s
		}
		if sum != tt.total {
			t.Errorf("%s: sizes sum to %d, want %d", tt.name, sum, tt.total)
		}
	}
}
