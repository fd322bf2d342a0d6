package mux

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panefit/panefit/internal/model"
)

// Memory is an in-memory Provider. It backs tests and the server's
// dry-run mode, where layout operations must not touch a real mux.
type Memory struct {
	mu         sync.RWMutex
	size       model.Size
	windows    map[int]*memWindow
	nextWindow int
	layouts    map[int]string
}

type memWindow struct {
	name   string
	active bool
	panes  []model.Pane
}

// NewMemory creates an empty in-memory session with the given window
// dimensions.
func NewMemory(width, height int) *Memory {
	return &Memory{
		size:    model.Size{Width: width, Height: height},
		windows: map[int]*memWindow{},
		layouts: map[int]string{},
	}
}

// Name returns "memory".
func (m *Memory) Name() string {
	return "memory"
}

// AddWindow creates a window and returns its id.
func (m *Memory) AddWindow(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addWindowLocked(name)
}

func (m *Memory) addWindowLocked(name string) int {
	id := m.nextWindow
	m.nextWindow++
	m.windows[id] = &memWindow{name: name, active: id == 0}
	return id
}

// AddPane places a pane in a window, creating the window when needed.
func (m *Memory) AddPane(window int, pane model.Pane) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[window]
	if !ok {
		w = &memWindow{name: fmt.Sprintf("win%d", window)}
		m.windows[window] = w
		if window >= m.nextWindow {
			m.nextWindow = window + 1
		}
	}
	w.panes = append(w.panes, pane)
}

// Layout reports the last layout string applied to a window.
func (m *Memory) Layout(window int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layouts[window]
}

func (m *Memory) ListWindows(ctx context.Context) ([]model.Window, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.windows))
	for id := range m.windows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	windows := make([]model.Window, 0, len(ids))
	for _, id := range ids {
		w := m.windows[id]
		windows = append(windows, model.Window{
			ID:        id,
			Name:      w.name,
			Active:    w.active,
			PaneCount: len(w.panes),
		})
	}
	return windows, nil
}

func (m *Memory) ListPanes(ctx context.Context, window int) ([]model.Pane, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[window]
	if !ok {
		return nil, fmt.Errorf("window @%d not found", window)
	}
	return append([]model.Pane(nil), w.panes...), nil
}

func (m *Memory) ListAllPanes(ctx context.Context) (map[int][]model.Pane, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make(map[int][]model.Pane, len(m.windows))
	for id, w := range m.windows {
		all[id] = append([]model.Pane(nil), w.panes...)
	}
	return all, nil
}

func (m *Memory) WindowSize(ctx context.Context, window int) (model.Size, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.windows[window]; !ok {
		return model.Size{}, fmt.Errorf("window @%d not found", window)
	}
	return m.size, nil
}

func (m *Memory) CapturePane(ctx context.Context, paneID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, pane, _, ok := m.findLocked(paneID); ok {
		return pane.Content, nil
	}
	return "", fmt.Errorf("%w: %q", model.ErrPaneNotFound, paneID)
}

func (m *Memory) ResizePane(ctx context.Context, paneID string, w, h int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, pane, _, ok := m.findLocked(paneID)
	if !ok {
		return fmt.Errorf("%w: %q", model.ErrPaneNotFound, paneID)
	}
	if w > 0 {
		pane.Width = w
	}
	if h > 0 {
		pane.Height = h
	}
	return nil
}

func (m *Memory) SelectLayout(ctx context.Context, window int, layout string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[window]; !ok {
		return fmt.Errorf("window @%d not found", window)
	}
	m.layouts[window] = layout
	return nil
}

func (m *Memory) MovePane(ctx context.Context, paneID string, window int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[window]; !ok {
		return fmt.Errorf("window @%d not found", window)
	}
	pane, err := m.removeLocked(paneID)
	if err != nil {
		return err
	}
	w := m.windows[window]
	w.panes = append(w.panes, pane)
	return nil
}

func (m *Memory) BreakPane(ctx context.Context, paneID string, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pane, err := m.removeLocked(paneID)
	if err != nil {
		return 0, err
	}
	id := m.addWindowLocked(name)
	m.windows[id].panes = []model.Pane{pane}
	return id, nil
}

func (m *Memory) JoinPane(ctx context.Context, paneID string, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	targetWindow, _, _, ok := m.findLocked(target)
	if !ok {
		return fmt.Errorf("%w: %q", model.ErrPaneNotFound, target)
	}
	pane, err := m.removeLocked(paneID)
	if err != nil {
		return err
	}
	w := m.windows[targetWindow]
	w.panes = append(w.panes, pane)
	return nil
}

func (m *Memory) SwapPanes(ctx context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	winA, paneA, idxA, okA := m.findLocked(a)
	winB, paneB, idxB, okB := m.findLocked(b)
	if !okA {
		return fmt.Errorf("%w: %q", model.ErrPaneNotFound, a)
	}
	if !okB {
		return fmt.Errorf("%w: %q", model.ErrPaneNotFound, b)
	}

	// Each pane takes over the other's slot and geometry.
	newA := *paneB
	newA.X, newA.Y, newA.Width, newA.Height = paneA.X, paneA.Y, paneA.Width, paneA.Height
	newB := *paneA
	newB.X, newB.Y, newB.Width, newB.Height = paneB.X, paneB.Y, paneB.Width, paneB.Height
	m.windows[winA].panes[idxA] = newA
	m.windows[winB].panes[idxB] = newB
	return nil
}

// findLocked locates a pane and returns its window, a pointer into the
// window's slice, and its index.
func (m *Memory) findLocked(paneID string) (int, *model.Pane, int, bool) {
	for id, w := range m.windows {
		for i := range w.panes {
			if w.panes[i].ID == paneID {
				return id, &w.panes[i], i, true
			}
		}
	}
	return 0, nil, 0, false
}

func (m *Memory) removeLocked(paneID string) (model.Pane, error) {
	window, _, idx, ok := m.findLocked(paneID)
	if !ok {
		return model.Pane{}, fmt.Errorf("%w: %q", model.ErrPaneNotFound, paneID)
	}
	w := m.windows[window]
	pane := w.panes[idx]
	w.panes = append(w.panes[:idx], w.panes[idx+1:]...)
	return pane, nil
}
