package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/panefit/panefit/internal/analyze"
	"github.com/panefit/panefit/internal/model"
)

const buildOutput = `$ go build ./...
package main: func handler error
import context failed
type server struct error return
$ go test ./...
func TestHandler error struct interface`

const poem = "quiet meadow sunshine drifting clouds above rolling hills"

const groceries = "milk bread butter eggs apples oranges coffee beans sugar"

func codePane(id string) model.Pane {
	return model.Pane{ID: id, Content: buildOutput, Width: 80, Height: 24, Command: "go"}
}

func textPane(id, content string) model.Pane {
	return model.Pane{ID: id, Content: content, Width: 80, Height: 24, Command: "cat"}
}

func TestGroupsPartition(t *testing.T) {
	snapshot := Snapshot{
		1: {codePane("%1"), textPane("%3", poem)},
		2: {codePane("%2"), textPane("%4", groceries)},
	}

	opt := New(nil)
	groups, err := opt.Groups(snapshot)
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}

	seen := map[string]int{}
	for _, g := range groups {
		if len(g.PaneIDs) == 0 {
			t.Errorf("group %s is empty", g.Name)
		}
		for _, id := range g.PaneIDs {
			seen[id]++
		}
	}
	for _, id := range []string{"%1", "%2", "%3", "%4"} {
		if seen[id] != 1 {
			t.Errorf("pane %s appears %d times across groups, want exactly once", id, seen[id])
		}
	}

	// The two build panes share content and must land together; the two
	// unrelated panes relate to nothing and fold into misc.
	var misc *Group
	for i := range groups {
		if groups[i].Name == "misc" {
			misc = &groups[i]
		} else {
			ids := strings.Join(groups[i].PaneIDs, ",")
			if !strings.Contains(ids, "%1") || !strings.Contains(ids, "%2") {
				t.Errorf("group %s = %v, want the build panes grouped", groups[i].Name, groups[i].PaneIDs)
			}
		}
	}
	if misc == nil {
		t.Fatal("no misc group for the singleton panes")
	}
	if len(misc.PaneIDs) != 2 {
		t.Errorf("misc = %v, want the two unrelated panes", misc.PaneIDs)
	}
}

func TestGroupsSeededByHighestImportance(t *testing.T) {
	// The thin pane sorts first in snapshot order; seeding must still
	// start from the richer, more important pane.
	thin := model.Pane{ID: "%1", Content: "$ go build ./...\nok", Width: 80, Height: 24, Command: "go"}
	rich := codePane("%2")
	snapshot := Snapshot{1: {thin, rich}}

	scores, err := analyze.New().Analyze([]model.Pane{thin, rich})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	byID := analyze.ScoreIndex(scores)
	if byID["%2"].Importance <= byID["%1"].Importance {
		t.Fatalf("fixture: importance %%2 = %.3f, %%1 = %.3f, want %%2 higher",
			byID["%2"].Importance, byID["%1"].Importance)
	}

	opt := New(nil)
	groups, err := opt.Groups(snapshot)
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %v, want the two build panes in one group", groups)
	}
	if got := groups[0].PaneIDs[0]; got != "%2" {
		t.Errorf("group seeded by %s, want the highest-importance pane %%2", got)
	}
	if got, want := groups[0].Importance, byID["%2"].Importance; got != want {
		t.Errorf("group importance = %.3f, want seed importance %.3f", got, want)
	}
}

func TestGroupsEmptySnapshot(t *testing.T) {
	opt := New(nil)
	groups, err := opt.Groups(nil)
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("groups = %v, want none", groups)
	}
}

func TestMovesTargetMajorityWindow(t *testing.T) {
	snapshot := Snapshot{
		1: {codePane("%1"), codePane("%2")},
		2: {codePane("%3")},
	}

	opt := New(nil)
	moves, err := opt.Moves(snapshot)
	if err != nil {
		t.Fatalf("Moves: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("moves = %+v, want exactly one", moves)
	}
	m := moves[0]
	if m.PaneID != "%3" || m.From != 2 || m.To != 1 {
		t.Errorf("move = %+v, want %%3 from window 2 to window 1", m)
	}
	if m.Group == "" {
		t.Errorf("move carries no group name: %+v", m)
	}
}

func TestMovesTieBreaksToLowestWindow(t *testing.T) {
	snapshot := Snapshot{
		3: {codePane("%1"), codePane("%2")},
		5: {codePane("%3"), codePane("%4")},
	}

	opt := New(nil)
	moves, err := opt.Moves(snapshot)
	if err != nil {
		t.Fatalf("Moves: %v", err)
	}
	for _, m := range moves {
		if m.To != 3 {
			t.Errorf("move %+v targets window %d, tie should go to window 3", m, m.To)
		}
	}
	if len(moves) != 2 {
		t.Errorf("moves = %+v, want the two panes from window 5", moves)
	}
}

func TestMovesNothingWhenAlreadyTogether(t *testing.T) {
	snapshot := Snapshot{
		1: {codePane("%1"), codePane("%2"), codePane("%3")},
	}

	opt := New(nil)
	moves, err := opt.Moves(snapshot)
	if err != nil {
		t.Fatalf("Moves: %v", err)
	}
	if len(moves) != 0 {
		t.Errorf("moves = %+v, want none", moves)
	}
}

func TestConsolidateRelated(t *testing.T) {
	snapshot := Snapshot{
		1: {codePane("%1"), textPane("%2", poem)},
		2: {codePane("%3")},
		4: {textPane("%4", groceries)},
	}

	opt := New(nil)
	moves, err := opt.ConsolidateRelated(snapshot, "%1")
	if err != nil {
		t.Fatalf("ConsolidateRelated: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("moves = %+v, want only the related pane", moves)
	}
	if m := moves[0]; m.PaneID != "%3" || m.From != 2 || m.To != 1 {
		t.Errorf("move = %+v, want %%3 from window 2 to window 1", m)
	}
}

func TestConsolidateRelatedUnknownPane(t *testing.T) {
	snapshot := Snapshot{1: {codePane("%1")}}

	opt := New(nil)
	_, err := opt.ConsolidateRelated(snapshot, "%99")
	if !errors.Is(err, model.ErrPaneNotFound) {
		t.Fatalf("err = %v, want ErrPaneNotFound", err)
	}
	if !strings.Contains(err.Error(), "%99") {
		t.Errorf("err = %v, want the offending pane id in the message", err)
	}
}

func TestParkInactive(t *testing.T) {
	idle := model.Pane{ID: "%9", Content: "", Width: 80, Height: 24}
	snapshot := Snapshot{
		1: {codePane("%1"), codePane("%2")},
		2: {idle},
	}

	opt := New(nil)
	moves, err := opt.ParkInactive(snapshot)
	if err != nil {
		t.Fatalf("ParkInactive: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("moves = %+v, want just the idle pane", moves)
	}
	m := moves[0]
	if m.PaneID != "%9" || m.From != 2 {
		t.Errorf("move = %+v, want %%9 from window 2", m)
	}
	if m.To != -1 || m.ToName != DefaultParkWindow {
		t.Errorf("move = %+v, want a new %q window", m, DefaultParkWindow)
	}
}

func TestParkInactiveSkipsActivePanes(t *testing.T) {
	active := model.Pane{ID: "%9", Content: "", Width: 80, Height: 24, Active: true}
	snapshot := Snapshot{
		1: {codePane("%1"), codePane("%2")},
		2: {active},
	}

	opt := New(nil)
	moves, err := opt.ParkInactive(snapshot)
	if err != nil {
		t.Fatalf("ParkInactive: %v", err)
	}
	for _, m := range moves {
		if m.PaneID == "%9" {
			t.Errorf("active pane was parked: %+v", m)
		}
	}
}
