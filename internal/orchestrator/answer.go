package orchestrator

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sasif-infinite/mcp/internal/crawler"
)

// Answer defaults and caps.
const (
	defaultTopK = 3
	maxTopK     = 10

	// answerSnippetLen is the window cut around the first matched token.
	answerSnippetLen = 320
)

// AnswerStatus classifies the outcome of a question against the index.
type AnswerStatus string

// Answer outcomes. None of these is an error: each is a defined degraded
// continuation the caller can present to the user.
const (
	AnswerOK            AnswerStatus = "ok"
	AnswerNoIndex       AnswerStatus = "no_index"
	AnswerNoMatches     AnswerStatus = "no_matches"
	AnswerEmptyQuestion AnswerStatus = "empty_question"
)

// Hit is one scored source for an answer.
type Hit struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet"`
	Score   int    `json:"score"`
}

// AnswerResult carries the ranked sources for a question.
type AnswerResult struct {
	Status AnswerStatus `json:"status"`
	Hits   []Hit        `json:"hits"`
}

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

// Answer scores the current index against the question and returns the
// top-k sources with a snippet window around the first matched token.
func (o *Orchestrator) Answer(_ context.Context, question string, topK int) AnswerResult {
	idx, ok := o.store.Current()
	if !ok {
		return AnswerResult{Status: AnswerNoIndex}
	}

	tokens := tokenize(question)
	if len(tokens) == 0 {
		return AnswerResult{Status: AnswerEmptyQuestion}
	}

	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	type scored struct {
		score int
		page  crawler.PageRecord
	}
	var candidates []scored
	for _, page := range idx.Pages {
		if s := score(tokens, page.Text); s > 0 {
			candidates = append(candidates, scored{score: s, page: page})
		}
	}
	if len(candidates) == 0 {
		return AnswerResult{Status: AnswerNoMatches}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	hits := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		hits = append(hits, Hit{
			URL:     c.page.URL,
			Title:   c.page.Title,
			Snippet: summarize(c.page.Text, tokens),
			Score:   c.score,
		})
	}
	return AnswerResult{Status: AnswerOK, Hits: hits}
}

// tokenize splits the question into lowercase alphanumeric tokens.
func tokenize(question string) []string {
	raw := tokenPattern.FindAllString(question, -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		tokens = append(tokens, strings.ToLower(t))
	}
	return tokens
}

// score counts total occurrences of every token in the document text.
func score(tokens []string, text string) int {
	lower := strings.ToLower(text)
	total := 0
	for _, t := range tokens {
		total += strings.Count(lower, t)
	}
	return total
}

// summarize cuts a window of answerSnippetLen bytes centered on the first
// token that appears in the text. Both window edges are pulled back to rune
// boundaries so the snippet is always valid UTF-8.
func summarize(text string, tokens []string) string {
	lower := strings.ToLower(text)
	pos := 0
	for _, t := range tokens {
		if idx := strings.Index(lower, t); idx != -1 {
			pos = idx
			break
		}
	}
	start := pos - answerSnippetLen/2
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := start + answerSnippetLen
	if end >= len(text) {
		end = len(text)
	} else {
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
	}
	return strings.TrimSpace(text[start:end])
}
