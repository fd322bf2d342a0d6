package model

import (
	"errors"
	"strings"
	"testing"
)

func TestPaneValidate(t *testing.T) {
	tests := []struct {
		name    string
		pane    Pane
		wantErr bool
		field   string
	}{
		{
			name: "valid pane",
			pane: Pane{ID: "%1", Width: 80, Height: 24},
		},
		{
			name:    "zero width",
			pane:    Pane{ID: "%2", Width: 0, Height: 24},
			wantErr: true,
			field:   "width",
		},
		{
			name:    "negative height",
			pane:    Pane{ID: "%3", Width: 80, Height: -1},
			wantErr: true,
			field:   "height",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pane.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrBadDimensions) {
					t.Errorf("error %v does not wrap ErrBadDimensions", err)
				}
				if !strings.Contains(err.Error(), tt.pane.ID) {
					t.Errorf("error %q does not name pane %s", err, tt.pane.ID)
				}
				if !strings.Contains(err.Error(), tt.field) {
					t.Errorf("error %q does not name field %s", err, tt.field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLayoutPane(t *testing.T) {
	l := Layout{
		WindowWidth:  200,
		WindowHeight: 50,
		Panes: []Rect{
			{ID: "%1", X: 0, Y: 0, Width: 120, Height: 50},
			{ID: "%2", X: 120, Y: 0, Width: 80, Height: 50},
		},
	}

	r, ok := l.Pane("%2")
	if !ok {
		t.Fatal("expected pane %2 to be found")
	}
	if r.X != 120 || r.Width != 80 {
		t.Errorf("got rect %+v, want x=120 width=80", r)
	}
	if r.Area() != 80*50 {
		t.Errorf("Area: got %d, want %d", r.Area(), 80*50)
	}

	if _, ok := l.Pane("%9"); ok {
		t.Error("expected missing pane to return ok=false")
	}
}
