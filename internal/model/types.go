package model

import "fmt"

// Pane is a snapshot of a single terminal pane: its identity, geometry,
// and captured text content. Panes are constructed fresh from a provider
// on every analysis or layout request and never mutated in place.
type Pane struct {
	// ID is the provider's stable pane identifier (e.g., "%3" for tmux).
	ID string `json:"id"`
	// Content is the captured text, bounded to the provider's history limit.
	Content string `json:"content"`
	// Width and Height are the current character-cell dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`
	// X and Y are the top-left offset in the window's coordinate space.
	X int `json:"x"`
	Y int `json:"y"`
	// Active is true if this pane currently holds input focus.
	Active bool `json:"active"`
	// Title is the pane title reported by the provider.
	Title string `json:"title,omitempty"`
	// Command is the foreground process name (advisory, may be empty).
	Command string `json:"command,omitempty"`
}

// Validate checks the pane invariants. Non-positive dimensions are an
// input-contract violation and fail with an error naming the pane and field.
func (p Pane) Validate() error {
	if p.Width < 1 {
		return fmt.Errorf("%w: pane %s: width %d", ErrBadDimensions, p.ID, p.Width)
	}
	if p.Height < 1 {
		return fmt.Errorf("%w: pane %s: height %d", ErrBadDimensions, p.ID, p.Height)
	}
	return nil
}

// Score holds the computed metrics for one pane. Raw measures are computed
// from the pane content alone; the Norm* fields and the two headline scores
// are min-max normalized across the batch the pane was analyzed in, so they
// are only meaningful relative to that batch.
type Score struct {
	PaneID string `json:"pane_id"`

	// Raw measures.
	CharEntropy   float64 `json:"char_entropy"`
	WordEntropy   float64 `json:"word_entropy"`
	Surprisal     float64 `json:"surprisal"`
	Activity      float64 `json:"activity"`
	KeywordRatio  float64 `json:"keyword_ratio"`
	UniqueWords   float64 `json:"unique_word_ratio"`
	ContentAmount float64 `json:"content_amount"`
	ChangeScore   float64 `json:"change_score"`

	WordCount int `json:"word_count"`
	LineCount int `json:"line_count"`

	// Batch-normalized sub-scores, each in [0,1].
	NormEntropy       float64 `json:"norm_entropy"`
	NormSurprisal     float64 `json:"norm_surprisal"`
	NormActivity      float64 `json:"norm_activity"`
	NormKeywords      float64 `json:"norm_keywords"`
	NormUniqueWords   float64 `json:"norm_unique_words"`
	NormContentAmount float64 `json:"norm_content_amount"`
	NormChange        float64 `json:"norm_change"`

	// Headline scores, both in [0,1].
	Importance      float64 `json:"importance"`
	Interestingness float64 `json:"interestingness"`

	// ContentHash identifies the analyzed content, for external caching
	// and change detection across runs.
	ContentHash string `json:"content_hash"`
}

// Relevance is the symmetric content-similarity result for a pane pair.
type Relevance struct {
	PaneA          string   `json:"pane_a"`
	PaneB          string   `json:"pane_b"`
	SharedKeywords []string `json:"shared_keywords,omitempty"`
	KeywordJaccard float64  `json:"keyword_jaccard"`
	WordJaccard    float64  `json:"word_jaccard"`
	TopicSimilarity float64 `json:"topic_similarity"`
	Combined       float64  `json:"combined"`
}

// Rect is the calculated position and size for a single pane.
type Rect struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Area returns the rectangle area in cells.
func (r Rect) Area() int { return r.Width * r.Height }

// Layout is a complete calculated arrangement for one window.
// Pane rectangles do not overlap and their union covers the window.
type Layout struct {
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
	Strategy     string `json:"strategy"`
	Panes        []Rect `json:"panes"`
}

// Pane returns the rectangle for the given pane id, if present.
func (l Layout) Pane(id string) (Rect, bool) {
	for _, r := range l.Panes {
		if r.ID == id {
			return r, true
		}
	}
	return Rect{}, false
}

// Window describes one multiplexer window.
type Window struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	PaneCount int    `json:"pane_count"`
}

// Size is a window's character-cell dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Move describes one pane relocation in a move plan. Plans are purely
// descriptive: the optimizer never issues provider calls itself.
type Move struct {
	PaneID string `json:"pane_id"`
	From   int    `json:"from_window"`
	// To is the target window id. When the target window does not exist
	// yet (parking), To is -1 and ToName carries the window name to create.
	To     int    `json:"to_window"`
	ToName string `json:"to_window_name,omitempty"`
	Group  string `json:"group,omitempty"`
}

// ExternalScore is the result of an external (LLM) content scoring call.
// It is blended into locally computed scores by the caller; the analyzer
// itself has no dependency on its availability.
type ExternalScore struct {
	Importance      float64  `json:"importance"`
	Interestingness float64  `json:"interestingness"`
	Summary         string   `json:"summary,omitempty"`
	Topics          []string `json:"topics,omitempty"`

	// Usage captures token consumption of the scoring call.
	Usage TokenUsage `json:"usage,omitempty"`
}

// TokenUsage captures LLM token consumption for one scoring call.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens,omitempty"`
	OutputTokens int64 `json:"output_tokens,omitempty"`
}
