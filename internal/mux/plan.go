package mux

import (
	"context"
	"fmt"
	"sort"

	"github.com/panefit/panefit/internal/model"
)

// StepOp identifies a layout plan operation.
type StepOp string

const (
	StepSwap   StepOp = "swap"
	StepResize StepOp = "resize"
)

// Step is one operation in a layout transformation plan.
type Step struct {
	Op       StepOp `json:"op"`
	PaneID   string `json:"pane"`
	TargetID string `json:"target,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// PlanLayout computes the steps that transform the window's current
// arrangement into the target layout: first swaps that put each pane
// at its target position in reading order, then resizes ordered bottom
// to top so shrinking a pane cannot starve one below it.
func PlanLayout(current []model.Pane, target model.Layout) []Step {
	if len(current) == 0 {
		return nil
	}

	currentOrder := make([]string, len(current))
	sorted := append([]model.Pane(nil), current...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})
	for i, p := range sorted {
		currentOrder[i] = p.ID
	}

	targetSorted := append([]model.Rect(nil), target.Panes...)
	sort.SliceStable(targetSorted, func(i, j int) bool {
		if targetSorted[i].Y != targetSorted[j].Y {
			return targetSorted[i].Y < targetSorted[j].Y
		}
		return targetSorted[i].X < targetSorted[j].X
	})

	var steps []Step
	working := currentOrder
	for i, rect := range targetSorted {
		if i >= len(working) {
			break
		}
		if working[i] == rect.ID {
			continue
		}
		j := -1
		for k := i + 1; k < len(working); k++ {
			if working[k] == rect.ID {
				j = k
				break
			}
		}
		if j < 0 {
			// Pane not in this window; moving it is a session concern.
			continue
		}
		steps = append(steps, Step{Op: StepSwap, PaneID: working[i], TargetID: rect.ID})
		working[i], working[j] = working[j], working[i]
	}

	resizeOrder := append([]model.Rect(nil), targetSorted...)
	sort.SliceStable(resizeOrder, func(i, j int) bool { return resizeOrder[i].Y > resizeOrder[j].Y })
	for _, rect := range resizeOrder {
		steps = append(steps, Step{Op: StepResize, PaneID: rect.ID, Width: rect.Width, Height: rect.Height})
	}
	return steps
}

// ExecutePlan runs a layout plan against a provider.
func ExecutePlan(ctx context.Context, p Provider, steps []Step) error {
	for _, step := range steps {
		switch step.Op {
		case StepSwap:
			if err := p.SwapPanes(ctx, step.PaneID, step.TargetID); err != nil {
				return fmt.Errorf("swap %s with %s: %w", step.PaneID, step.TargetID, err)
			}
		case StepResize:
			if err := p.ResizePane(ctx, step.PaneID, step.Width, step.Height); err != nil {
				return fmt.Errorf("resize %s: %w", step.PaneID, err)
			}
		}
	}
	return nil
}

// ApplyLayout transforms a window to the target layout: it executes
// the planned swaps and resizes, then enforces exact geometry with the
// native layout string.
func ApplyLayout(ctx context.Context, p Provider, window int, layout model.Layout) error {
	current, err := p.ListPanes(ctx, window)
	if err != nil {
		return err
	}
	if err := ExecutePlan(ctx, p, PlanLayout(current, layout)); err != nil {
		return err
	}
	return p.SelectLayout(ctx, window, BuildLayoutString(layout))
}
