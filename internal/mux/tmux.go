package mux

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/panefit/panefit/internal/model"
)

// defaultHistoryLines is how much scrollback CapturePane includes.
const defaultHistoryLines = 100

// ansiRe matches CSI escape sequences left in captured pane content.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Tmux implements the Provider interface for tmux.
type Tmux struct {
	// HistoryLines is the scrollback depth captured per pane.
	HistoryLines int
}

// NewTmux creates a tmux provider with the default capture depth.
func NewTmux() *Tmux {
	return &Tmux{HistoryLines: defaultHistoryLines}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// paneFormat mirrors the fields of model.Pane; pane_top is y and
// pane_left is x in tmux's coordinate system.
const paneFormat = "#{pane_id}|#{pane_width}|#{pane_height}|#{pane_top}|#{pane_left}|#{pane_active}|#{pane_title}|#{pane_current_command}"

// ListWindows returns all windows in the current session.
func (t *Tmux) ListWindows(ctx context.Context) ([]model.Window, error) {
	format := "#{window_id}|#{window_name}|#{window_active}|#{window_panes}"
	out, err := t.run(ctx, "list-windows", "-F", format)
	if err != nil {
		return nil, fmt.Errorf("tmux list-windows: %w", err)
	}

	var windows []model.Window
	for _, line := range splitLines(out) {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		id, err := parseWindowID(parts[0])
		if err != nil {
			continue
		}
		count, _ := strconv.Atoi(parts[3])
		windows = append(windows, model.Window{
			ID:        id,
			Name:      parts[1],
			Active:    parts[2] == "1",
			PaneCount: count,
		})
	}
	return windows, nil
}

// ListPanes returns the panes of one window, content included.
func (t *Tmux) ListPanes(ctx context.Context, window int) ([]model.Pane, error) {
	out, err := t.run(ctx, "list-panes", "-t", windowTarget(window), "-F", paneFormat)
	if err != nil {
		return nil, fmt.Errorf("tmux list-panes: %w", err)
	}

	var panes []model.Pane
	for _, line := range splitLines(out) {
		pane, ok := t.parsePane(ctx, line)
		if !ok {
			continue
		}
		panes = append(panes, pane)
	}
	return panes, nil
}

// ListAllPanes returns every pane in the session keyed by window id.
func (t *Tmux) ListAllPanes(ctx context.Context) (map[int][]model.Pane, error) {
	format := "#{window_id}|" + paneFormat
	out, err := t.run(ctx, "list-panes", "-s", "-F", format)
	if err != nil {
		return nil, fmt.Errorf("tmux list-panes -s: %w", err)
	}

	panes := make(map[int][]model.Pane)
	for _, line := range splitLines(out) {
		winField, rest, found := strings.Cut(line, "|")
		if !found {
			continue
		}
		window, err := parseWindowID(winField)
		if err != nil {
			continue
		}
		pane, ok := t.parsePane(ctx, rest)
		if !ok {
			continue
		}
		panes[window] = append(panes[window], pane)
	}
	return panes, nil
}

// parsePane decodes one paneFormat line and captures the pane content.
func (t *Tmux) parsePane(ctx context.Context, line string) (model.Pane, bool) {
	parts := strings.SplitN(line, "|", 8)
	if len(parts) != 8 {
		return model.Pane{}, false
	}
	width, err1 := strconv.Atoi(parts[1])
	height, err2 := strconv.Atoi(parts[2])
	y, err3 := strconv.Atoi(parts[3])
	x, err4 := strconv.Atoi(parts[4])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return model.Pane{}, false
	}

	content, err := t.CapturePane(ctx, parts[0])
	if err != nil {
		// A pane can vanish between list and capture; keep the rest.
		content = ""
	}

	return model.Pane{
		ID:      parts[0],
		Content: content,
		Width:   width,
		Height:  height,
		Y:       y,
		X:       x,
		Active:  parts[5] == "1",
		Title:   parts[6],
		Command: parts[7],
	}, true
}

// WindowSize reports a window's dimensions in cells.
func (t *Tmux) WindowSize(ctx context.Context, window int) (model.Size, error) {
	out, err := t.run(ctx, "display-message", "-t", windowTarget(window), "-p", "#{window_width}|#{window_height}")
	if err != nil {
		return model.Size{}, fmt.Errorf("tmux display-message: %w", err)
	}
	wField, hField, found := strings.Cut(strings.TrimSpace(out), "|")
	if !found {
		return model.Size{}, fmt.Errorf("unexpected window size output %q", out)
	}
	w, err1 := strconv.Atoi(wField)
	h, err2 := strconv.Atoi(hField)
	if err1 != nil || err2 != nil {
		return model.Size{}, fmt.Errorf("unexpected window size output %q", out)
	}
	return model.Size{Width: w, Height: h}, nil
}

// CapturePane captures a pane's recent content including scrollback,
// with ANSI escape sequences stripped.
func (t *Tmux) CapturePane(ctx context.Context, paneID string) (string, error) {
	history := t.HistoryLines
	if history <= 0 {
		history = defaultHistoryLines
	}
	out, err := t.run(ctx, "capture-pane", "-t", paneID, "-p", "-S", fmt.Sprintf("-%d", history))
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane -t %s: %w", paneID, err)
	}
	return ansiRe.ReplaceAllString(out, ""), nil
}

// ResizePane sets a pane's dimensions. Zero leaves a dimension as is.
func (t *Tmux) ResizePane(ctx context.Context, paneID string, w, h int) error {
	if w > 0 {
		if _, err := t.run(ctx, "resize-pane", "-t", paneID, "-x", strconv.Itoa(w)); err != nil {
			return fmt.Errorf("tmux resize-pane -x: %w", err)
		}
	}
	if h > 0 {
		if _, err := t.run(ctx, "resize-pane", "-t", paneID, "-y", strconv.Itoa(h)); err != nil {
			return fmt.Errorf("tmux resize-pane -y: %w", err)
		}
	}
	return nil
}

// SelectLayout applies a native layout string to a window.
func (t *Tmux) SelectLayout(ctx context.Context, window int, layout string) error {
	if _, err := t.run(ctx, "select-layout", "-t", windowTarget(window), layout); err != nil {
		return fmt.Errorf("tmux select-layout: %w", err)
	}
	return nil
}

// MovePane joins a pane into another window with a vertical split.
func (t *Tmux) MovePane(ctx context.Context, paneID string, window int) error {
	if _, err := t.run(ctx, "join-pane", "-v", "-s", paneID, "-t", windowTarget(window)); err != nil {
		return fmt.Errorf("tmux join-pane: %w", err)
	}
	return nil
}

// BreakPane splits a pane out into a new window and returns its id.
func (t *Tmux) BreakPane(ctx context.Context, paneID string, name string) (int, error) {
	args := []string{"break-pane", "-s", paneID, "-P", "-F", "#{window_id}"}
	if name != "" {
		args = append(args, "-n", name)
	}
	out, err := t.run(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("tmux break-pane: %w", err)
	}
	window, err := parseWindowID(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("tmux break-pane: %w", err)
	}
	return window, nil
}

// JoinPane joins a pane next to a target pane, across windows.
func (t *Tmux) JoinPane(ctx context.Context, paneID string, target string) error {
	if _, err := t.run(ctx, "join-pane", "-v", "-s", paneID, "-t", target); err != nil {
		return fmt.Errorf("tmux join-pane: %w", err)
	}
	return nil
}

// SwapPanes exchanges the positions of two panes, across windows too.
func (t *Tmux) SwapPanes(ctx context.Context, a, b string) error {
	if _, err := t.run(ctx, "swap-pane", "-s", a, "-t", b); err != nil {
		return fmt.Errorf("tmux swap-pane: %w", err)
	}
	return nil
}

// run executes a tmux command and returns its stdout.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// windowTarget formats a window id the way tmux expects (@N).
func windowTarget(window int) string {
	return fmt.Sprintf("@%d", window)
}

// parseWindowID decodes tmux's "@N" window id form.
func parseWindowID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "@"))
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return id, nil
}
