// Package analyze computes content scores for terminal panes.
//
// The Scorer computes raw statistical measures (entropy, surprisal,
// activity, keyword density) from pane text. The Analyzer normalizes
// those measures across a batch of panes and combines them into
// importance and interestingness scores. Everything here is pure
// computation over immutable snapshots: no I/O, no retained state.
package analyze

import (
	"crypto/sha256"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/panefit/panefit/internal/model"
)

// surprisalContext is the number of preceding words used as n-gram context.
const surprisalContext = 2

// contentAmountCap is the non-empty line count at which the content-amount
// measure saturates.
const contentAmountCap = 500

// activityWindow is the number of trailing lines examined for activity.
// Looking only at the tail gives the measure its recency bias.
const activityWindow = 20

// Scorer computes raw, non-normalized measures over a block of text.
// The zero value is ready to use; all methods are pure functions.
type Scorer struct{}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// tokenize lowercases the text, strips punctuation, and returns words
// longer than one character.
func tokenize(text string) []string {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	words := fields[:0]
	for _, w := range fields {
		if len(w) > 1 {
			words = append(words, w)
		}
	}
	return words
}

// entropy computes Shannon entropy in bits over the observed frequency
// distribution of items. An empty input has entropy 0.
func entropy[T comparable](items []T) float64 {
	if len(items) == 0 {
		return 0
	}
	counts := make(map[T]int, len(items))
	for _, it := range items {
		counts[it]++
	}
	// Sum in a fixed order: float addition is not associative, and map
	// iteration order would otherwise leak into the result.
	dist := make([]int, 0, len(counts))
	for _, c := range counts {
		dist = append(dist, c)
	}
	sort.Ints(dist)

	total := float64(len(items))
	h := 0.0
	for _, c := range dist {
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// CharEntropy returns the Shannon entropy of the character distribution.
// A single repeated character yields 0, as does whitespace-only text.
func (Scorer) CharEntropy(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return entropy([]rune(text))
}

// WordEntropy returns the Shannon entropy of the word distribution.
func (Scorer) WordEntropy(text string) float64 {
	return entropy(tokenize(text))
}

// Surprisal builds a word n-gram model over the text's own sequence
// (context = two preceding words) and returns the average
// -log2 P(word | context) with Laplace smoothing, scaled to [0,1].
// Texts with fewer than three words score 0.
func (Scorer) Surprisal(text string) float64 {
	words := tokenize(text)
	if len(words) <= surprisalContext {
		return 0
	}

	vocab := make(map[string]struct{}, len(words))
	for _, w := range words {
		vocab[w] = struct{}{}
	}
	vocabSize := float64(len(vocab))

	// context -> next-word counts
	contexts := make(map[string]map[string]int)
	totals := make(map[string]int)
	for i := surprisalContext; i < len(words); i++ {
		ctx := strings.Join(words[i-surprisalContext:i], " ")
		next := words[i]
		if contexts[ctx] == nil {
			contexts[ctx] = make(map[string]int)
		}
		contexts[ctx][next]++
		totals[ctx]++
	}

	// Average surprisal with Laplace smoothing (+1 / +V) so unseen
	// continuations never hit log(0).
	sum := 0.0
	count := 0
	for i := surprisalContext; i < len(words); i++ {
		ctx := strings.Join(words[i-surprisalContext:i], " ")
		next := words[i]
		p := (float64(contexts[ctx][next]) + 1) / (float64(totals[ctx]) + vocabSize)
		sum += -math.Log2(p)
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Min(1, sum/float64(count)/10)
}

// Activity scores recent shell activity in the text. The last
// activityWindow lines are examined: each line matching an activity
// pattern adds 0.1, each non-empty line adds 0.02. Capped at 1.
func (Scorer) Activity(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > activityWindow {
		lines = lines[len(lines)-activityWindow:]
	}

	score := 0.0
	for _, line := range lines {
		for _, re := range activityPatterns {
			if re.MatchString(line) {
				score += 0.1
				break
			}
		}
		if strings.TrimSpace(line) != "" {
			score += 0.02
		}
	}
	return math.Min(1, score)
}

// KeywordRatio returns the fraction of tokens that are code keywords.
func (Scorer) KeywordRatio(text string) float64 {
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, w := range words {
		if _, ok := codeKeywords[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

// UniqueWordRatio returns distinct words over total words.
func (Scorer) UniqueWordRatio(text string) float64 {
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

// ContentAmount is a log-scaled measure of how much text the pane holds,
// saturating at contentAmountCap non-empty lines.
func (Scorer) ContentAmount(text string) float64 {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Min(1, math.Log10(1+float64(n))/math.Log10(1+contentAmountCap))
}

// extractKeywords returns up to top most frequent non-stopword tokens.
// Ties are broken alphabetically so extraction is deterministic.
func extractKeywords(text string, top int) []string {
	words := tokenize(text)
	freq := make(map[string]int, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		freq[w]++
	}

	keys := make([]string, 0, len(freq))
	for w := range freq {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > top {
		keys = keys[:top]
	}
	return keys
}

// jaccard returns |a ∩ b| / |a ∪ b| for two string sets, 0 when both empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func toSet(words []string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Relevance computes the symmetric content-similarity score between two
// panes: 0.4·keyword-jaccard + 0.3·word-jaccard + 0.3·topic-similarity.
// Topic similarity compares the code keywords appearing in each text
// (neutral 0.5 when neither text contains any) and folds in the
// similarity of the pane commands when both are known.
func (s Scorer) Relevance(a, b model.Pane) model.Relevance {
	kwA := extractKeywords(a.Content, 20)
	kwB := extractKeywords(b.Content, 20)
	setA, setB := toSet(kwA), toSet(kwB)

	var shared []string
	for _, w := range kwA {
		if _, ok := setB[w]; ok {
			shared = append(shared, w)
		}
	}
	kwJaccard := jaccard(setA, setB)

	wordsA := toSet(tokenize(a.Content))
	wordsB := toSet(tokenize(b.Content))
	wordJaccard := jaccard(wordsA, wordsB)

	codeA := make(map[string]struct{})
	for w := range wordsA {
		if _, ok := codeKeywords[w]; ok {
			codeA[w] = struct{}{}
		}
	}
	codeB := make(map[string]struct{})
	for w := range wordsB {
		if _, ok := codeKeywords[w]; ok {
			codeB[w] = struct{}{}
		}
	}

	topic := 0.0
	switch {
	case len(codeA) > 0 && len(codeB) > 0:
		topic = jaccard(codeA, codeB)
	case len(codeA) == 0 && len(codeB) == 0:
		topic = 0.5
	}

	// Panes running the same or similarly named command are likely related
	// even when their captured text diverges.
	if a.Command != "" && b.Command != "" {
		topic = (topic + commandSimilarity(a.Command, b.Command)) / 2
	}

	return model.Relevance{
		PaneA:           a.ID,
		PaneB:           b.ID,
		SharedKeywords:  shared,
		KeywordJaccard:  kwJaccard,
		WordJaccard:     wordJaccard,
		TopicSimilarity: topic,
		Combined:        0.4*kwJaccard + 0.3*wordJaccard + 0.3*topic,
	}
}

// commandSimilarity is a normalized Levenshtein similarity in [0,1].
func commandSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
	return 1 - float64(dist)/float64(longest)
}

// ContentHash returns a short hex digest of the content, for external
// caching and change detection.
func ContentHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h[:8])
}
