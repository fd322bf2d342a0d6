package model

import "errors"

// Sentinel errors for the three failure kinds callers branch on.
// Contract violations and reference errors wrap these with the offending
// identifier; degenerate-but-valid inputs never produce errors.
var (
	// ErrBadDimensions marks an input-contract violation: a pane or window
	// with non-positive dimensions.
	ErrBadDimensions = errors.New("invalid dimensions")

	// ErrPaneNotFound marks a reference to a pane id absent from the snapshot.
	ErrPaneNotFound = errors.New("pane not found")

	// ErrUnknownStrategy marks an unrecognized layout strategy or mode name.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
