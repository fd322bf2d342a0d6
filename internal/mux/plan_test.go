package mux

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/panefit/panefit/internal/model"
)

func TestPlanLayoutSwapsThenResizes(t *testing.T) {
	current := []model.Pane{
		{ID: "%1", X: 0, Y: 0, Width: 100, Height: 50},
		{ID: "%2", X: 100, Y: 0, Width: 100, Height: 50},
	}
	target := model.Layout{
		WindowWidth: 200, WindowHeight: 50,
		Panes: []model.Rect{
			{ID: "%2", X: 0, Y: 0, Width: 160, Height: 50},
			{ID: "%1", X: 160, Y: 0, Width: 40, Height: 50},
		},
	}

	steps := PlanLayout(current, target)
	want := []Step{
		{Op: StepSwap, PaneID: "%1", TargetID: "%2"},
		{Op: StepResize, PaneID: "%2", Width: 160, Height: 50},
		{Op: StepResize, PaneID: "%1", Width: 40, Height: 50},
	}
	if !reflect.DeepEqual(steps, want) {
		t.Errorf("steps = %+v\nwant    %+v", steps, want)
	}
}

func TestPlanLayoutNoSwapWhenOrdered(t *testing.T) {
	current := []model.Pane{
		{ID: "%1", X: 0, Y: 0, Width: 100, Height: 50},
		{ID: "%2", X: 100, Y: 0, Width: 100, Height: 50},
	}
	target := model.Layout{
		WindowWidth: 200, WindowHeight: 50,
		Panes: []model.Rect{
			{ID: "%1", X: 0, Y: 0, Width: 160, Height: 50},
			{ID: "%2", X: 160, Y: 0, Width: 40, Height: 50},
		},
	}

	for _, step := range PlanLayout(current, target) {
		if step.Op == StepSwap {
			t.Errorf("unexpected swap step: %+v", step)
		}
	}
}

func TestPlanLayoutResizesBottomUp(t *testing.T) {
	current := []model.Pane{
		{ID: "%1", X: 0, Y: 0, Width: 50, Height: 100},
		{ID: "%2", X: 0, Y: 100, Width: 50, Height: 100},
	}
	target := model.Layout{
		WindowWidth: 50, WindowHeight: 200,
		Panes: []model.Rect{
			{ID: "%1", X: 0, Y: 0, Width: 50, Height: 150},
			{ID: "%2", X: 0, Y: 150, Width: 50, Height: 50},
		},
	}

	var resizes []string
	for _, step := range PlanLayout(current, target) {
		if step.Op == StepResize {
			resizes = append(resizes, step.PaneID)
		}
	}
	if !reflect.DeepEqual(resizes, []string{"%2", "%1"}) {
		t.Errorf("resize order = %v, want bottom pane first", resizes)
	}
}

func TestPlanLayoutSkipsForeignPanes(t *testing.T) {
	current := []model.Pane{
		{ID: "%1", X: 0, Y: 0, Width: 200, Height: 50},
	}
	target := model.Layout{
		WindowWidth: 200, WindowHeight: 50,
		Panes: []model.Rect{
			{ID: "%9", X: 0, Y: 0, Width: 160, Height: 50},
			{ID: "%1", X: 160, Y: 0, Width: 40, Height: 50},
		},
	}

	for _, step := range PlanLayout(current, target) {
		if step.Op == StepSwap {
			t.Errorf("planned a swap with a pane outside the window: %+v", step)
		}
	}
}

func TestApplyLayout(t *testing.T) {
	mem := NewMemory(200, 50)
	win := mem.AddWindow("work")
	mem.AddPane(win, model.Pane{ID: "%1", X: 0, Y: 0, Width: 100, Height: 50})
	mem.AddPane(win, model.Pane{ID: "%2", X: 100, Y: 0, Width: 100, Height: 50})

	layout := model.Layout{
		WindowWidth: 200, WindowHeight: 50,
		Panes: []model.Rect{
			{ID: "%1", X: 0, Y: 0, Width: 160, Height: 50},
			{ID: "%2", X: 160, Y: 0, Width: 40, Height: 50},
		},
	}
	if err := ApplyLayout(context.Background(), mem, win, layout); err != nil {
		t.Fatalf("ApplyLayout: %v", err)
	}

	panes, err := mem.ListPanes(context.Background(), win)
	if err != nil {
		t.Fatalf("ListPanes: %v", err)
	}
	sizes := map[string]int{}
	for _, p := range panes {
		sizes[p.ID] = p.Width
	}
	if sizes["%1"] != 160 || sizes["%2"] != 40 {
		t.Errorf("pane widths after apply = %v, want %%1=160 %%2=40", sizes)
	}

	applied := mem.Layout(win)
	if !strings.HasSuffix(applied, "200x50,0,0{160x50,0,0,1,40x50,160,0,2}") {
		t.Errorf("layout string = %q, want the computed horizontal layout", applied)
	}
}
