// Package dashboard is the interactive TUI: a live table of per-pane
// scores, a strategy selector, and a preview of the computed layout
// that can be applied with one keypress.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/panefit/panefit/internal/analyze"
	"github.com/panefit/panefit/internal/layout"
	"github.com/panefit/panefit/internal/model"
	"github.com/panefit/panefit/internal/mux"
	"github.com/panefit/panefit/internal/scorer"
)

// strategyKeys maps the number keys 1-5 to strategies, in display order.
var strategyKeys = []layout.Strategy{
	layout.Balanced,
	layout.Importance,
	layout.Entropy,
	layout.Activity,
	layout.Related,
}

// modeCycle is the order the m key steps through.
var modeCycle = []layout.Mode{layout.Auto, layout.Horizontal, layout.Vertical, layout.Tiled}

// messages
type refreshMsg struct {
	window int
	panes  []model.Pane
	scores []model.Score
	layout model.Layout
	err    error
}

type appliedMsg struct {
	err error
}

type tickMsg struct{}

// Dashboard runs the interactive score and layout view.
type Dashboard struct {
	Provider        mux.Provider
	Analyzer        *analyze.Analyzer
	Blender         *scorer.Blender // nil disables external enrichment
	Strategy        layout.Strategy
	Mode            layout.Mode
	RefreshInterval time.Duration // 0 disables auto-refresh
	Theme           string
}

// Run starts the dashboard and blocks until the user quits.
func (d *Dashboard) Run(ctx context.Context) error {
	analyzer := d.Analyzer
	if analyzer == nil {
		analyzer = analyze.New()
	}
	strategy := d.Strategy
	if strategy == "" {
		strategy = layout.Balanced
	}
	mode := d.Mode
	if mode == "" {
		mode = layout.Auto
	}

	st := newStyles(ThemeByName(d.Theme))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.warn

	tbl := table.New(
		table.WithColumns(scoreColumns()),
		table.WithHeight(10),
		table.WithFocused(true),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true).Foreground(ThemeByName(d.Theme).TextMuted)
	ts.Selected = st.selected
	tbl.SetStyles(ts)

	m := &dashModel{
		provider:        d.Provider,
		analyzer:        analyzer,
		blender:         d.Blender,
		ctx:             ctx,
		refreshInterval: d.RefreshInterval,
		strategy:        strategy,
		mode:            mode,
		styles:          st,
		spinner:         sp,
		table:           tbl,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type dashModel struct {
	provider        mux.Provider
	analyzer        *analyze.Analyzer
	blender         *scorer.Blender
	ctx             context.Context
	refreshInterval time.Duration

	strategy layout.Strategy
	mode     layout.Mode

	window int
	panes  []model.Pane
	scores []model.Score
	layout model.Layout

	table   table.Model
	spinner spinner.Model
	styles  styles

	width  int
	height int

	refreshing   bool
	message      string
	refreshCount int
}

func (m *dashModel) Init() tea.Cmd {
	m.refreshing = true
	return tea.Batch(m.spinner.Tick, m.doRefresh())
}

func (m *dashModel) scheduleTick() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// doRefresh captures the active window, analyzes it, and computes the
// layout preview off the UI goroutine.
func (m *dashModel) doRefresh() tea.Cmd {
	provider := m.provider
	analyzer := m.analyzer
	blender := m.blender
	strategy := m.strategy
	mode := m.mode
	ctx := m.ctx

	return func() tea.Msg {
		window, err := activeWindow(ctx, provider)
		if err != nil {
			return refreshMsg{err: err}
		}
		panes, err := provider.ListPanes(ctx, window)
		if err != nil {
			return refreshMsg{err: err}
		}
		scores, err := analyzer.Analyze(panes)
		if err != nil {
			return refreshMsg{err: err}
		}
		if blender != nil {
			scores = blender.Enrich(ctx, panes, scores)
		}
		size, err := provider.WindowSize(ctx, window)
		if err != nil {
			return refreshMsg{err: err}
		}
		calc := layout.New(strategy, mode)
		if strategy == layout.Related {
			calc.Relevance = analyzer.RelevanceMatrix(panes)
		}
		lay, err := calc.Calculate(panes, scores, size.Width, size.Height)
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{window: window, panes: panes, scores: scores, layout: lay}
	}
}

func (m *dashModel) doApply() tea.Cmd {
	provider := m.provider
	ctx := m.ctx
	window := m.window
	lay := m.layout
	return func() tea.Msg {
		return appliedMsg{err: mux.ApplyLayout(ctx, provider, window, lay)}
	}
}

func (m *dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - 14
		if h < 4 {
			h = 4
		}
		if h > len(m.panes)+1 {
			h = len(m.panes) + 1
		}
		m.table.SetHeight(h)
		return m, nil

	case refreshMsg:
		m.refreshing = false
		if msg.err != nil {
			m.message = fmt.Sprintf("refresh failed: %v", msg.err)
		} else {
			m.window = msg.window
			m.panes = msg.panes
			m.scores = msg.scores
			m.layout = msg.layout
			m.refreshCount++
			m.message = ""
			m.table.SetRows(m.scoreRows())
		}
		if cmd := m.scheduleTick(); cmd != nil {
			return m, cmd
		}
		return m, nil

	case appliedMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("apply failed: %v", msg.err)
			return m, nil
		}
		m.message = "layout applied"
		m.refreshing = true
		return m, m.doRefresh()

	case tickMsg:
		if m.refreshing {
			return m, m.scheduleTick()
		}
		m.refreshing = true
		return m, m.doRefresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *dashModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "1", "2", "3", "4", "5":
		idx := int(key[0] - '1')
		if idx < len(strategyKeys) && m.strategy != strategyKeys[idx] {
			m.strategy = strategyKeys[idx]
			m.refreshing = true
			return m, m.doRefresh()
		}
		return m, nil

	case "m":
		for i, mode := range modeCycle {
			if mode == m.mode {
				m.mode = modeCycle[(i+1)%len(modeCycle)]
				break
			}
		}
		m.refreshing = true
		return m, m.doRefresh()

	case "r":
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.message = ""
		return m, m.doRefresh()

	case "a":
		if len(m.layout.Panes) == 0 {
			m.message = "nothing to apply"
			return m, nil
		}
		m.message = "applying..."
		return m, m.doApply()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *dashModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.styles.title.Render("panefit"))
	b.WriteString("  ")
	b.WriteString(m.styles.dim.Render("1-5=strategy  m=mode  r=refresh  a=apply  q=quit"))
	if m.refreshing {
		b.WriteString("  ")
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.warn.Render("refreshing"))
	}
	b.WriteString("\n")

	b.WriteString(m.viewStrategyBar())
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	b.WriteString(m.viewPreview())

	summary := fmt.Sprintf("  window @%d | %d panes | refresh #%d", m.window, len(m.panes), m.refreshCount)
	b.WriteString(m.styles.dim.Render(summary))
	b.WriteString("\n")

	if m.message != "" {
		style := m.styles.dim
		if strings.Contains(m.message, "failed") {
			style = m.styles.err
		} else if m.message == "layout applied" {
			style = m.styles.good
		}
		b.WriteString(style.Render("  " + m.message))
		b.WriteString("\n")
	}

	return b.String()
}

// viewStrategyBar renders the strategy selector with the active entry
// highlighted, plus the current mode.
func (m *dashModel) viewStrategyBar() string {
	var parts []string
	for i, s := range strategyKeys {
		label := fmt.Sprintf("%d:%s", i+1, s)
		if s == m.strategy {
			parts = append(parts, m.styles.selected.Render(label))
		} else {
			parts = append(parts, m.styles.dim.Render(label))
		}
	}
	bar := "  " + strings.Join(parts, "  ")
	bar += m.styles.dim.Render(fmt.Sprintf("   mode:%s", m.mode))
	return bar
}

// viewPreview renders each target rectangle as a proportional bar so
// the effect of a strategy is visible before applying.
func (m *dashModel) viewPreview() string {
	if len(m.layout.Panes) == 0 {
		return ""
	}
	total := m.layout.WindowWidth * m.layout.WindowHeight
	if total <= 0 {
		return ""
	}

	barWidth := m.width - 30
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 60 {
		barWidth = 60
	}

	var b strings.Builder
	b.WriteString(m.styles.dim.Render("  preview"))
	b.WriteString("\n")
	for _, r := range m.layout.Panes {
		ratio := float64(r.Area()) / float64(total)
		filled := int(ratio * float64(barWidth))
		if filled < 1 {
			filled = 1
		}
		bar := strings.Repeat("█", filled)
		b.WriteString(fmt.Sprintf("  %-4s %s %s\n",
			r.ID,
			m.styles.bar.Render(bar),
			m.styles.dim.Render(fmt.Sprintf("%dx%d @(%d,%d)", r.Width, r.Height, r.X, r.Y))))
	}
	return b.String()
}

// scoreRows builds the table rows, highest importance first.
func (m *dashModel) scoreRows() []table.Row {
	byID := analyze.ScoreIndex(m.scores)
	panes := make([]model.Pane, len(m.panes))
	copy(panes, m.panes)
	sort.SliceStable(panes, func(i, j int) bool {
		return byID[panes[i].ID].Importance > byID[panes[j].ID].Importance
	})

	rows := make([]table.Row, 0, len(panes))
	for _, p := range panes {
		s := byID[p.ID]
		active := ""
		if p.Active {
			active = "*"
		}
		size := ""
		if r, ok := m.layout.Pane(p.ID); ok {
			size = fmt.Sprintf("%dx%d", r.Width, r.Height)
		}
		rows = append(rows, table.Row{
			p.ID + active,
			p.Command,
			fmt.Sprintf("%.2f", s.Importance),
			fmt.Sprintf("%.2f", s.Interestingness),
			fmt.Sprintf("%.2f", s.NormActivity),
			size,
		})
	}
	return rows
}

func scoreColumns() []table.Column {
	return []table.Column{
		{Title: "Pane", Width: 7},
		{Title: "Cmd", Width: 10},
		{Title: "Imp", Width: 5},
		{Title: "Int", Width: 5},
		{Title: "Act", Width: 5},
		{Title: "Size", Width: 8},
	}
}

func activeWindow(ctx context.Context, p mux.Provider) (int, error) {
	windows, err := p.ListWindows(ctx)
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
