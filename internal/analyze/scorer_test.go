package analyze

import (
	"math"
	"strings"
	"testing"

	"github.com/panefit/panefit/internal/model"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestCharEntropy(t *testing.T) {
	var s Scorer

	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "empty text", text: "", want: 0},
		{name: "single repeated char", text: "aaaaaaaa", want: 0},
		{name: "two chars uniform", text: "abababab", want: 1},
		{name: "four chars uniform", text: "abcdabcd", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.CharEntropy(tt.text)
			if !almostEqual(got, tt.want) {
				t.Errorf("CharEntropy(%q) = %f, want %f", tt.text, got, tt.want)
			}
		})
	}
}

func TestCharEntropyUniformIsMaximal(t *testing.T) {
	var s Scorer

	// A uniform distribution over the alphabet maximizes entropy;
	// skewing the distribution must lower it.
	uniform := s.CharEntropy("abcdefgh")
	skewed := s.CharEntropy("aaaaaabc")
	if skewed >= uniform {
		t.Errorf("skewed entropy %f should be below uniform entropy %f", skewed, uniform)
	}
}

func TestEntropyBitForBitRepeatable(t *testing.T) {
	var s Scorer

	// The skewed distribution exercises the per-symbol accumulation;
	// repeated calls must agree exactly, not just within epsilon.
	text := "error warn warn info info info debug debug debug debug trace"
	charWant := s.CharEntropy(text)
	wordWant := s.WordEntropy(text)
	for i := 0; i < 50; i++ {
		if got := s.CharEntropy(text); got != charWant {
			t.Fatalf("CharEntropy call %d = %v, want %v", i, got, charWant)
		}
		if got := s.WordEntropy(text); got != wordWant {
			t.Fatalf("WordEntropy call %d = %v, want %v", i, got, wordWant)
		}
	}
}

func TestSurprisal(t *testing.T) {
	var s Scorer

	if got := s.Surprisal(""); got != 0 {
		t.Errorf("empty text: got %f, want 0", got)
	}
	if got := s.Surprisal("one two"); got != 0 {
		t.Errorf("two words: got %f, want 0", got)
	}

	// Deterministic given identical input.
	text := "the quick brown fox jumps over the lazy dog and the quick brown cat"
	a := s.Surprisal(text)
	b := s.Surprisal(text)
	if a != b {
		t.Errorf("surprisal not deterministic: %f vs %f", a, b)
	}
	if a < 0 || a > 1 {
		t.Errorf("surprisal %f out of [0,1]", a)
	}
	if a == 0 {
		t.Error("varied text should have nonzero surprisal")
	}
}

func TestSurprisalRepetitiveVsVaried(t *testing.T) {
	var s Scorer

	repetitive := strings.Repeat("build ok build ok ", 20)
	varied := "compile error unexpected token parser failed near line forty while scanning composite literal expression"

	if s.Surprisal(repetitive) >= s.Surprisal(varied) {
		t.Errorf("repetitive text (%f) should surprise less than varied text (%f)",
			s.Surprisal(repetitive), s.Surprisal(varied))
	}
}

func TestActivity(t *testing.T) {
	var s Scorer

	if got := s.Activity(""); got != 0 {
		t.Errorf("empty: got %f, want 0", got)
	}
	if got := s.Activity("   \n  \n"); got != 0 {
		t.Errorf("whitespace only: got %f, want 0", got)
	}

	quiet := "just some prose\nwith no commands"
	busy := "$ make test\n$ git status\n$ go build ./...\nnpm install\n$ cargo check"
	if s.Activity(busy) <= s.Activity(quiet) {
		t.Errorf("busy pane (%f) should out-score quiet pane (%f)",
			s.Activity(busy), s.Activity(quiet))
	}

	// Only the trailing window counts: old activity scrolled out of the
	// last 20 lines is ignored.
	oldActivity := "$ git log\n" + strings.Repeat("output line\n", 30)
	recentActivity := strings.Repeat("output line\n", 30) + "$ git log\n"
	if s.Activity(oldActivity) >= s.Activity(recentActivity) {
		t.Errorf("recency bias missing: old=%f recent=%f",
			s.Activity(oldActivity), s.Activity(recentActivity))
	}
}

func TestKeywordRatio(t *testing.T) {
	var s Scorer

	if got := s.KeywordRatio(""); got != 0 {
		t.Errorf("empty: got %f, want 0", got)
	}
	// "func" is not a keyword but "return", "error", "if" are. 3 of 6 tokens.
	got := s.KeywordRatio("return error if banana orange grape")
	if !almostEqual(got, 0.5) {
		t.Errorf("got %f, want 0.5", got)
	}
	// Case-insensitive.
	if s.KeywordRatio("RETURN") != s.KeywordRatio("return") {
		t.Error("keyword match should be case-insensitive")
	}
}

func TestUniqueWordRatio(t *testing.T) {
	var s Scorer

	if got := s.UniqueWordRatio("echo echo echo echo"); !almostEqual(got, 0.25) {
		t.Errorf("got %f, want 0.25", got)
	}
	if got := s.UniqueWordRatio("alpha beta gamma delta"); !almostEqual(got, 1) {
		t.Errorf("got %f, want 1", got)
	}
}

func TestContentAmount(t *testing.T) {
	var s Scorer

	if got := s.ContentAmount(""); got != 0 {
		t.Errorf("empty: got %f, want 0", got)
	}

	small := s.ContentAmount(strings.Repeat("line\n", 5))
	large := s.ContentAmount(strings.Repeat("line\n", 400))
	huge := s.ContentAmount(strings.Repeat("line\n", 5000))

	if small >= large {
		t.Errorf("monotonicity: small=%f large=%f", small, large)
	}
	if huge != 1 {
		t.Errorf("cap: got %f, want 1", huge)
	}
}

func TestRelevance(t *testing.T) {
	var s Scorer

	a := model.Pane{ID: "%1", Width: 80, Height: 24,
		Content: "func main parse config yaml unmarshal struct error return nil"}
	b := model.Pane{ID: "%2", Width: 80, Height: 24,
		Content: "parse config yaml decode struct field error handling return wrapped"}
	c := model.Pane{ID: "%3", Width: 80, Height: 24,
		Content: "tail -f access log nginx requests per second latency histogram"}

	relAB := s.Relevance(a, b)
	relAC := s.Relevance(a, c)

	if relAB.Combined < 0 || relAB.Combined > 1 {
		t.Errorf("combined %f out of [0,1]", relAB.Combined)
	}
	if relAB.Combined <= relAC.Combined {
		t.Errorf("similar panes (%f) should out-score dissimilar panes (%f)",
			relAB.Combined, relAC.Combined)
	}

	// Symmetric.
	relBA := s.Relevance(b, a)
	if !almostEqual(relAB.Combined, relBA.Combined) {
		t.Errorf("relevance not symmetric: %f vs %f", relAB.Combined, relBA.Combined)
	}
}

func TestRelevanceNeutralTopicWithoutCode(t *testing.T) {
	var s Scorer

	a := model.Pane{ID: "%1", Width: 80, Height: 24, Content: "weather forecast sunny tomorrow"}
	b := model.Pane{ID: "%2", Width: 80, Height: 24, Content: "recipe pasta tomato garlic"}

	rel := s.Relevance(a, b)
	if !almostEqual(rel.TopicSimilarity, 0.5) {
		t.Errorf("topic similarity without code keywords: got %f, want 0.5", rel.TopicSimilarity)
	}
}

func TestRelevanceCommandSimilarity(t *testing.T) {
	var s Scorer

	content := "weather forecast sunny tomorrow"
	same := s.Relevance(
		model.Pane{ID: "%1", Width: 80, Height: 24, Content: content, Command: "vim"},
		model.Pane{ID: "%2", Width: 80, Height: 24, Content: content, Command: "vim"},
	)
	different := s.Relevance(
		model.Pane{ID: "%1", Width: 80, Height: 24, Content: content, Command: "vim"},
		model.Pane{ID: "%2", Width: 80, Height: 24, Content: content, Command: "htop"},
	)
	if same.TopicSimilarity <= different.TopicSimilarity {
		t.Errorf("same command (%f) should out-score different command (%f)",
			same.TopicSimilarity, different.TopicSimilarity)
	}
}

func TestContentHash(t *testing.T) {
	if ContentHash("a") == ContentHash("b") {
		t.Error("different content should hash differently")
	}
	if ContentHash("same") != ContentHash("same") {
		t.Error("identical content should hash identically")
	}
}
