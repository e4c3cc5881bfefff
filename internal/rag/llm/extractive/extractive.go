// Package extractive answers offline by quoting the passage sentences that share the most words with the query.
package extractive

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/akolanti/GoIndex/internal/rag/llm"
)

var (
	sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]?`)
	tokenPattern    = regexp.MustCompile(`\p{L}+|\p{N}+`)
)

const noAnswer = "I don't know based on the indexed documents."

type Synthesizer struct {
	maxSentences int
}

func NewExtractive(maxSentences int) llm.Provider {
	if maxSentences <= 0 {
		maxSentences = 2
	}
	return &Synthesizer{maxSentences: maxSentences}
}

type scored struct {
	order int
	text  string
	score float64
}

func (s *Synthesizer) Generate(ctx context.Context, query string, passages []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	queryTerms := make(map[string]struct{})
	for _, tok := range tokens(query) {
		queryTerms[tok] = struct{}{}
	}

	var candidates []scored
	order := 0
	for _, p := range passages {
		for _, sent := range sentencePattern.FindAllString(p, -1) {
			sent = strings.TrimSpace(sent)
			if sent == "" {
				continue
			}
			toks := tokens(sent)
			hits := 0
			for _, tok := range toks {
				if _, ok := queryTerms[tok]; ok {
					hits++
				}
			}
			if hits > 0 {
				candidates = append(candidates, scored{
					order: order,
					text:  sent,
					score: float64(hits) / math.Sqrt(float64(len(toks))),
				})
			}
			order++
		}
	}
	if len(candidates) == 0 {
		return noAnswer, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > s.maxSentences {
		candidates = candidates[:s.maxSentences]
	}
	// keep reading order among the picked sentences
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].order < candidates[j].order })

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.text
	}
	return strings.Join(out, " "), nil
}

func tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
