// Package similarity scores textual closeness between a candidate draft and
// previously published content. Texts are reduced to term-frequency vectors
// over normalized tokens and compared with cosine similarity. Everything in
// this package is pure and deterministic.
package similarity

import (
	"math"
	"strings"
	"unicode"
)

// Score returns the maximum pairwise cosine similarity between candidate and
// any text in corpus, in [0,1]. An empty corpus scores 0.0.
func Score(candidate string, corpus []string) float64 {
	score, _ := Best(candidate, corpus)
	return score
}

// Best returns the maximum similarity and the corpus index of the closest
// text. The index is -1 when the corpus is empty.
func Best(candidate string, corpus []string) (float64, int) {
	if len(corpus) == 0 {
		return 0, -1
	}

	cand := termFreq(tokenize(candidate))

	best := 0.0
	bestIdx := 0
	for i, text := range corpus {
		sim := cosine(cand, termFreq(tokenize(text)))
		if sim > best {
			best = sim
			bestIdx = i
		}
	}
	return best, bestIdx
}

// tokenize lower-cases the text and splits it on anything that is not a
// letter or digit. Stop-words are retained: posts are short, and dropping
// them skews scores more than it helps.
func tokenize(text string) []string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Fields(mapped)
}

// termFreq builds a raw term-frequency vector from tokens.
func termFreq(tokens []string) map[string]float64 {
	freq := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}

// cosine computes cosine similarity between two term-frequency vectors.
// Equal vectors short-circuit to exactly 1.0 so identical texts are never
// subject to floating-point drift.
func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if vectorsEqual(a, b) {
		return 1.0
	}

	var dot, normA, normB float64
	for term, fa := range a {
		normA += fa * fa
		if fb, ok := b[term]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range b {
		normB += fb * fb
	}

	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func vectorsEqual(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for term, fa := range a {
		if fb, ok := b[term]; !ok || fa != fb {
			return false
		}
	}
	return true
}
