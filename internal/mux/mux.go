// Package mux provides an abstraction over terminal multiplexers.
//
// The provider is pure transport: it reports pane content and session
// topology and executes layout operations, without judging any of it.
// Scoring and layout decisions live in the analyze and layout packages.
package mux

import (
	"context"

	"github.com/panefit/panefit/internal/model"
)

// Provider abstracts terminal multiplexer operations. Implementations
// exist for tmux and for an in-memory fake used by tests and dry runs.
type Provider interface {
	// Name returns the provider name (e.g., "tmux").
	Name() string

	// ListWindows returns all windows in the current session.
	ListWindows(ctx context.Context) ([]model.Window, error)

	// ListPanes returns the panes of one window, content included.
	ListPanes(ctx context.Context, window int) ([]model.Pane, error)

	// ListAllPanes returns every pane in the session keyed by window id.
	ListAllPanes(ctx context.Context) (map[int][]model.Pane, error)

	// WindowSize reports a window's dimensions in cells.
	WindowSize(ctx context.Context, window int) (model.Size, error)

	// CapturePane returns a pane's recent content with escape
	// sequences stripped.
	CapturePane(ctx context.Context, paneID string) (string, error)

	// ResizePane sets a pane's width and height. Zero leaves a
	// dimension unchanged.
	ResizePane(ctx context.Context, paneID string, w, h int) error

	// SelectLayout applies a native layout string to a window.
	SelectLayout(ctx context.Context, window int, layout string) error

	// MovePane joins a pane into another window.
	MovePane(ctx context.Context, paneID string, window int) error

	// BreakPane splits a pane out into a new window and returns the
	// new window's id.
	BreakPane(ctx context.Context, paneID string, name string) (int, error)

	// JoinPane joins a pane next to a target pane, across windows.
	JoinPane(ctx context.Context, paneID string, target string) error

	// SwapPanes exchanges the positions of two panes.
	SwapPanes(ctx context.Context, a, b string) error
}
