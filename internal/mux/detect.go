package mux

import (
	"fmt"
	"os"
	"os/exec"
)

// Detect auto-detects the active terminal multiplexer. It checks the
// environment first, then falls back to probing for a running tmux
// server.
func Detect() (Provider, error) {
	if os.Getenv("TMUX") != "" {
		return NewTmux(), nil
	}

	if tmuxPath, err := exec.LookPath("tmux"); err == nil && tmuxPath != "" {
		// A running server answers list-sessions even from outside.
		cmd := exec.Command("tmux", "list-sessions")
		if err := cmd.Run(); err == nil {
			return NewTmux(), nil
		}
	}

	return nil, fmt.Errorf("no terminal multiplexer detected (set $TMUX or start tmux)")
}

// FromName creates a Provider by name.
func FromName(name string) (Provider, error) {
	switch name {
	case "tmux":
		return NewTmux(), nil
	case "":
		return Detect()
	default:
		return nil, fmt.Errorf("unknown multiplexer: %q (supported: tmux)", name)
	}
}
