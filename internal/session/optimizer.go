// Package session plans cross-window pane organization: grouping
// related panes, consolidating scattered context, and parking idle
// panes. All planning is pure; executing the resulting moves is the
// caller's job.
package session

import (
	"fmt"
	"sort"

	"github.com/panefit/panefit/internal/analyze"
	"github.com/panefit/panefit/internal/model"
)

// Default planning thresholds.
const (
	DefaultRelevanceThreshold  = 0.3
	DefaultImportanceThreshold = 0.2
	DefaultActivityThreshold   = 0.2
	DefaultParkWindow          = "parked"
)

// miscGroup collects panes that relate to nothing else.
const miscGroup = "misc"

// Snapshot maps window ids to the panes they currently hold.
type Snapshot map[int][]model.Pane

// Group is a set of panes that belong in the same window.
type Group struct {
	Name       string   `json:"name"`
	PaneIDs    []string `json:"panes"`
	Topic      string   `json:"topic"`
	Importance float64  `json:"importance"`
}

// Optimizer suggests session-wide pane arrangements from content
// analysis. The zero thresholds mean "use the default".
type Optimizer struct {
	RelevanceThreshold  float64
	ImportanceThreshold float64
	ActivityThreshold   float64
	ParkWindow          string

	analyzer *analyze.Analyzer
}

// New returns an Optimizer with default thresholds.
func New(analyzer *analyze.Analyzer) *Optimizer {
	if analyzer == nil {
		analyzer = analyze.New()
	}
	return &Optimizer{
		RelevanceThreshold:  DefaultRelevanceThreshold,
		ImportanceThreshold: DefaultImportanceThreshold,
		ActivityThreshold:   DefaultActivityThreshold,
		ParkWindow:          DefaultParkWindow,
		analyzer:            analyzer,
	}
}

// Groups partitions the session's panes into related groups. Panes are
// seeded in importance order; a pane joins the seed's group when their
// relevance meets the threshold. Panes that end up alone fold into a
// single misc group, so every pane lands in exactly one group.
func (o *Optimizer) Groups(snapshot Snapshot) ([]Group, error) {
	panes, _ := flatten(snapshot)
	if len(panes) == 0 {
		return nil, nil
	}

	scores, err := o.analyzer.Analyze(panes)
	if err != nil {
		return nil, err
	}
	matrix := o.analyzer.RelevanceMatrix(panes)
	byID := analyze.ScoreIndex(scores)

	assigned := make(map[string]bool, len(panes))
	var groups []Group
	for _, seedID := range analyze.SortByImportance(scores) {
		if assigned[seedID] {
			continue
		}
		seed := byID[seedID]
		group := Group{
			Name:       fmt.Sprintf("group_%d", len(groups)+1),
			PaneIDs:    []string{seed.PaneID},
			Topic:      commandOf(panes, seed.PaneID),
			Importance: seed.Importance,
		}
		assigned[seed.PaneID] = true

		for _, other := range panes {
			if assigned[other.ID] {
				continue
			}
			rel, ok := lookupRelevance(matrix, seed.PaneID, other.ID)
			if !ok || rel.Combined < o.relevanceThreshold() {
				continue
			}
			group.PaneIDs = append(group.PaneIDs, other.ID)
			assigned[other.ID] = true
			if len(rel.SharedKeywords) > 0 {
				group.Topic = rel.SharedKeywords[0]
			}
		}
		if len(group.PaneIDs) > 1 {
			groups = append(groups, group)
		} else {
			// Singleton seeds are folded into misc below.
			assigned[seed.PaneID] = false
		}
	}

	var leftover []string
	for _, p := range panes {
		if !assigned[p.ID] {
			leftover = append(leftover, p.ID)
		}
	}
	if len(leftover) > 0 {
		groups = append(groups, Group{
			Name:    miscGroup,
			PaneIDs: leftover,
			Topic:   "miscellaneous",
		})
	}
	return groups, nil
}

// Moves plans the pane moves that gather each group into one window.
// The target is the window already holding most of the group's panes,
// with ties going to the lowest window id.
func (o *Optimizer) Moves(snapshot Snapshot) ([]model.Move, error) {
	groups, err := o.Groups(snapshot)
	if err != nil {
		return nil, err
	}
	_, windowOf := flatten(snapshot)

	var moves []model.Move
	for _, group := range groups {
		if len(group.PaneIDs) < 2 {
			continue
		}
		target := majorityWindow(group.PaneIDs, windowOf)
		for _, id := range group.PaneIDs {
			if from := windowOf[id]; from != target {
				moves = append(moves, model.Move{
					PaneID: id,
					From:   from,
					To:     target,
					Group:  group.Name,
				})
			}
		}
	}
	return moves, nil
}

// ConsolidateRelated plans moves that bring every pane relevant to the
// given pane into that pane's window.
func (o *Optimizer) ConsolidateRelated(snapshot Snapshot, paneID string) ([]model.Move, error) {
	panes, windowOf := flatten(snapshot)
	target, found := windowOf[paneID]
	if !found {
		return nil, fmt.Errorf("%w: %q", model.ErrPaneNotFound, paneID)
	}

	matrix := o.analyzer.RelevanceMatrix(panes)
	var moves []model.Move
	for _, p := range panes {
		if p.ID == paneID || windowOf[p.ID] == target {
			continue
		}
		rel, ok := lookupRelevance(matrix, paneID, p.ID)
		if !ok || rel.Combined < o.relevanceThreshold() {
			continue
		}
		moves = append(moves, model.Move{
			PaneID: p.ID,
			From:   windowOf[p.ID],
			To:     target,
		})
	}
	return moves, nil
}

// ParkInactive plans moves of idle low-importance panes to the parking
// window. The parking window may not exist yet, so the moves carry its
// name and a negative window id; the executor breaks the first parked
// pane into a new window and joins the rest. Active panes never park.
func (o *Optimizer) ParkInactive(snapshot Snapshot) ([]model.Move, error) {
	panes, windowOf := flatten(snapshot)
	if len(panes) == 0 {
		return nil, nil
	}

	scores, err := o.analyzer.Analyze(panes)
	if err != nil {
		return nil, err
	}
	byID := analyze.ScoreIndex(scores)

	park := o.ParkWindow
	if park == "" {
		park = DefaultParkWindow
	}
	importanceMax := o.ImportanceThreshold
	if importanceMax == 0 {
		importanceMax = DefaultImportanceThreshold
	}
	activityMax := o.ActivityThreshold
	if activityMax == 0 {
		activityMax = DefaultActivityThreshold
	}

	var moves []model.Move
	for _, p := range panes {
		if p.Active {
			continue
		}
		s := byID[p.ID]
		if s.Importance >= importanceMax || s.NormActivity >= activityMax {
			continue
		}
		moves = append(moves, model.Move{
			PaneID: p.ID,
			From:   windowOf[p.ID],
			To:     -1,
			ToName: park,
		})
	}
	return moves, nil
}

func (o *Optimizer) relevanceThreshold() float64 {
	if o.RelevanceThreshold > 0 {
		return o.RelevanceThreshold
	}
	return DefaultRelevanceThreshold
}

// flatten orders the snapshot deterministically (window id, then pane
// id) and records each pane's window.
func flatten(snapshot Snapshot) ([]model.Pane, map[string]int) {
	windows := make([]int, 0, len(snapshot))
	for w := range snapshot {
		windows = append(windows, w)
	}
	sort.Ints(windows)

	var panes []model.Pane
	windowOf := make(map[string]int)
	for _, w := range windows {
		inWindow := append([]model.Pane(nil), snapshot[w]...)
		sort.Slice(inWindow, func(i, j int) bool { return inWindow[i].ID < inWindow[j].ID })
		for _, p := range inWindow {
			panes = append(panes, p)
			windowOf[p.ID] = w
		}
	}
	return panes, windowOf
}

func majorityWindow(paneIDs []string, windowOf map[string]int) int {
	counts := make(map[int]int)
	for _, id := range paneIDs {
		counts[windowOf[id]]++
	}
	target, best := 0, -1
	for w, n := range counts {
		if n > best || (n == best && w < target) {
			target, best = w, n
		}
	}
	return target
}

func commandOf(panes []model.Pane, id string) string {
	for _, p := range panes {
		if p.ID == id {
			return p.Command
		}
	}
	return ""
}

// lookupRelevance reads the matrix regardless of pair orientation.
func lookupRelevance(matrix map[[2]string]model.Relevance, a, b string) (model.Relevance, bool) {
	if b < a {
		a, b = b, a
	}
	rel, ok := matrix[[2]string{a, b}]
	return rel, ok
}
