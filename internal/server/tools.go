package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/panefit/panefit/internal/analyze"
	"github.com/panefit/panefit/internal/layout"
	"github.com/panefit/panefit/internal/model"
	"github.com/panefit/panefit/internal/mux"
)

// Tool describes one callable tool for tools/list.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func toolDefinitions() []Tool {
	paneItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":      map[string]any{"type": "string"},
			"content": map[string]any{"type": "string"},
			"width":   map[string]any{"type": "integer"},
			"height":  map[string]any{"type": "integer"},
		},
		"required": []string{"id", "content"},
	}
	strategyProp := map[string]any{
		"type":    "string",
		"enum":    layout.StrategyNames(),
		"default": "balanced",
	}
	modeProp := map[string]any{
		"type":    "string",
		"enum":    []string{"auto", "horizontal", "vertical", "tiled"},
		"default": "auto",
	}

	return []Tool{
		{
			Name:        "analyze_panes",
			Description: "Analyze pane contents and return importance/interestingness metrics. Reads the live session when no pane data is given.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"panes": map[string]any{
						"type":        "array",
						"description": "Optional: custom pane data. If not provided, reads from the multiplexer.",
						"items":       paneItem,
					},
				},
			},
		},
		{
			Name:        "calculate_layout",
			Description: "Calculate optimal pane layout based on content analysis.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"panes": map[string]any{
						"type":        "array",
						"description": "Pane data with content",
						"items":       paneItem,
					},
					"window_width":  map[string]any{"type": "integer", "default": 200},
					"window_height": map[string]any{"type": "integer", "default": 50},
					"strategy":      strategyProp,
					"mode":          modeProp,
				},
				"required": []string{"panes"},
			},
		},
		{
			Name:        "reflow_window",
			Description: "Analyze the panes of a live window and apply the optimal layout. Requires a multiplexer session.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"strategy": strategyProp,
					"mode":     modeProp,
					"window": map[string]any{
						"type":        "integer",
						"description": "Window id. Defaults to the active window.",
					},
					"dry_run": map[string]any{
						"type":        "boolean",
						"description": "If true, calculate but don't apply the layout",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "get_strategies",
			Description: "Get the available layout strategies with descriptions.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

func (s *Server) callTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "analyze_panes":
		return s.toolAnalyzePanes(ctx, args)
	case "calculate_layout":
		return s.toolCalculateLayout(ctx, args)
	case "reflow_window":
		return s.toolReflowWindow(ctx, args)
	case "get_strategies":
		return s.toolGetStrategies()
	default:
		return nil, &RPCError{Code: codeInvalidParams, Message: "unknown tool: " + name}
	}
}

// paneArg is the wire form of a pane supplied by the client.
type paneArg struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

func (p paneArg) toModel() model.Pane {
	pane := model.Pane{ID: p.ID, Content: p.Content, Width: p.Width, Height: p.Height}
	if pane.Width == 0 {
		pane.Width = 80
	}
	if pane.Height == 0 {
		pane.Height = 24
	}
	return pane
}

func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: "invalid arguments: " + err.Error()}
	}
	return nil
}

func (s *Server) toolAnalyzePanes(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Panes []paneArg `json:"panes"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	var panes []model.Pane
	if len(in.Panes) > 0 {
		for _, p := range in.Panes {
			panes = append(panes, p.toModel())
		}
	} else {
		var err error
		panes, err = s.sessionPanes(ctx)
		if err != nil {
			return nil, err
		}
	}

	scores, err := s.analyzer.Analyze(panes)
	if err != nil {
		return nil, err
	}
	scores = s.enrich(ctx, panes, scores)
	s.metrics.RecordPanesAnalyzed(ctx, len(panes))

	byID := analyze.ScoreIndex(scores)
	out := make([]map[string]any, 0, len(panes))
	for _, pane := range panes {
		sc := byID[pane.ID]
		out = append(out, map[string]any{
			"id":      pane.ID,
			"command": pane.Command,
			"active":  pane.Active,
			"metrics": map[string]any{
				"importance":      round3(sc.Importance),
				"interestingness": round3(sc.Interestingness),
				"entropy":         round3(sc.CharEntropy),
				"activity":        round3(sc.Activity),
				"word_count":      sc.WordCount,
			},
		})
	}
	return map[string]any{"panes": out}, nil
}

func (s *Server) toolCalculateLayout(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Panes        []paneArg `json:"panes"`
		WindowWidth  int       `json:"window_width"`
		WindowHeight int       `json:"window_height"`
		Strategy     string    `json:"strategy"`
		Mode         string    `json:"mode"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if len(in.Panes) == 0 {
		return nil, &RPCError{Code: codeInvalidParams, Message: "panes is required"}
	}
	if in.WindowWidth == 0 {
		in.WindowWidth = 200
	}
	if in.WindowHeight == 0 {
		in.WindowHeight = 50
	}

	panes := make([]model.Pane, 0, len(in.Panes))
	for _, p := range in.Panes {
		panes = append(panes, p.toModel())
	}

	calc, err := s.newCalculator(in.Strategy, in.Mode, panes)
	if err != nil {
		return nil, err
	}
	scores, err := s.analyzer.Analyze(panes)
	if err != nil {
		return nil, err
	}
	scores = s.enrich(ctx, panes, scores)

	lay, err := calc.Calculate(panes, scores, in.WindowWidth, in.WindowHeight)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLayout(ctx, lay.Strategy)

	return layoutResult(lay), nil
}

func (s *Server) toolReflowWindow(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Strategy string `json:"strategy"`
		Mode     string `json:"mode"`
		Window   *int   `json:"window"`
		DryRun   bool   `json:"dry_run"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return map[string]any{"error": "no multiplexer session available"}, nil
	}

	window, err := s.resolveWindow(ctx, in.Window)
	if err != nil {
		return nil, err
	}
	panes, err := s.provider.ListPanes(ctx, window)
	if err != nil {
		return nil, err
	}
	if len(panes) < 2 {
		return map[string]any{"status": "skipped", "message": "need at least 2 panes"}, nil
	}

	scores, err := s.analyzer.Analyze(panes)
	if err != nil {
		return nil, err
	}
	scores = s.enrich(ctx, panes, scores)
	s.metrics.RecordPanesAnalyzed(ctx, len(panes))

	size, err := s.provider.WindowSize(ctx, window)
	if err != nil {
		return nil, err
	}
	calc, err := s.newCalculator(in.Strategy, in.Mode, panes)
	if err != nil {
		return nil, err
	}
	lay, err := calc.Calculate(panes, scores, size.Width, size.Height)
	if err != nil {
		return nil, err
	}

	status := "calculated"
	if !in.DryRun {
		if err := mux.ApplyLayout(ctx, s.provider, window, lay); err != nil {
			return nil, fmt.Errorf("apply layout: %w", err)
		}
		status = "applied"
	}
	s.metrics.RecordLayout(ctx, lay.Strategy)

	byID := analyze.ScoreIndex(scores)
	out := make([]map[string]any, 0, len(panes))
	for _, pane := range panes {
		entry := map[string]any{
			"id":         pane.ID,
			"importance": round3(byID[pane.ID].Importance),
			"new_size":   "unchanged",
		}
		if r, ok := lay.Pane(pane.ID); ok {
			entry["new_size"] = fmt.Sprintf("%dx%d", r.Width, r.Height)
		}
		out = append(out, entry)
	}
	return map[string]any{"status": status, "window": window, "panes": out}, nil
}

func (s *Server) toolGetStrategies() (any, error) {
	return map[string]any{"strategies": layout.Strategies()}, nil
}

// newCalculator builds a calculator for the given names, wiring the
// relevance matrix when the strategy needs pairwise signals.
func (s *Server) newCalculator(strategy, mode string, panes []model.Pane) (*layout.Calculator, error) {
	if strategy == "" {
		strategy = string(layout.Balanced)
	}
	if mode == "" {
		mode = string(layout.Auto)
	}
	st, err := layout.ParseStrategy(strategy)
	if err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	md, err := layout.ParseMode(mode)
	if err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	calc := layout.New(st, md)
	if st == layout.Related {
		calc.Relevance = s.analyzer.RelevanceMatrix(panes)
	}
	return calc, nil
}

// sessionPanes flattens every pane in the session in deterministic
// window-then-id order.
func (s *Server) sessionPanes(ctx context.Context) ([]model.Pane, error) {
	if s.provider == nil {
		return nil, &RPCError{Code: codeInvalidParams,
			Message: "no panes provided and no multiplexer session available"}
	}
	byWindow, err := s.provider.ListAllPanes(ctx)
	if err != nil {
		return nil, err
	}
	windows := make([]int, 0, len(byWindow))
	for w := range byWindow {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	var panes []model.Pane
	for _, w := range windows {
		ps := byWindow[w]
		sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
		panes = append(panes, ps...)
	}
	return panes, nil
}

func (s *Server) resolveWindow(ctx context.Context, arg *int) (int, error) {
	if arg != nil {
		return *arg, nil
	}
	windows, err := s.provider.ListWindows(ctx)
	if err != nil {
		return 0, err
	}
	for _, w := range windows {
		if w.Active {
			return w.ID, nil
		}
	}
	if len(windows) > 0 {
		return windows[0].ID, nil
	}
	return 0, fmt.Errorf("session has no windows")
}

func (s *Server) enrich(ctx context.Context, panes []model.Pane, scores []model.Score) []model.Score {
	if s.blender == nil {
		return scores
	}
	return s.blender.Enrich(ctx, panes, scores)
}

func layoutResult(lay model.Layout) map[string]any {
	total := lay.WindowWidth * lay.WindowHeight
	panes := make([]map[string]any, 0, len(lay.Panes))
	for _, r := range lay.Panes {
		panes = append(panes, map[string]any{
			"id":         r.ID,
			"x":          r.X,
			"y":          r.Y,
			"width":      r.Width,
			"height":     r.Height,
			"area_ratio": round3(float64(r.Area()) / float64(total)),
		})
	}
	return map[string]any{
		"window":   map[string]any{"width": lay.WindowWidth, "height": lay.WindowHeight},
		"strategy": lay.Strategy,
		"panes":    panes,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
