// Package quality scores generated content on a 0-100 scale using cheap
// deterministic heuristics: body length, sentence readability, hashtag usage,
// and paragraph shape. The engine only consumes the final number; how it is
// computed is this package's business alone.
package quality

import (
	"regexp"
	"sort"
	"strings"
)

var (
	wordRE    = regexp.MustCompile(`\b\w+\b`)
	hashtagRE = regexp.MustCompile(`#\w+`)
	sentenceRE = regexp.MustCompile(`[.!?]\s+`)
)

// stopwords excluded from keyword extraction. Short list on purpose; posts
// are short and over-filtering leaves nothing behind.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "of": true, "to": true, "in": true,
	"on": true, "for": true, "with": true, "at": true, "by": true, "it": true,
	"this": true, "that": true, "its": true, "as": true, "be": true,
	"you": true, "your": true, "we": true, "our": true, "i": true, "my": true,
	"what": true, "how": true, "not": true, "have": true, "has": true,
}

// Score rates a content body from 0 to 100.
func Score(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	score := 0.35*float64(lengthScore(text)) +
		0.25*float64(readabilityScore(text)) +
		0.25*float64(hashtagScore(text)) +
		0.15*float64(shapeScore(text))

	return int(score + 0.5)
}

// lengthScore rewards the 120-200 word, sub-1300 character band that short
// social posts perform best in.
func lengthScore(text string) int {
	words := len(wordRE.FindAllString(text, -1))
	chars := len(text)

	var s int
	switch {
	case words >= 120 && words <= 200:
		s = 100
	case words < 120:
		s = words * 100 / 120
	default:
		s = max(0, 100-(words-200))
	}

	if chars > 1300 {
		s = max(0, s-(chars-1300)/10)
	}
	return s
}

// readabilityScore rewards average sentence length between 12 and 22 words.
func readabilityScore(text string) int {
	sentences := sentenceRE.Split(text, -1)
	var lens []int
	for _, s := range sentences {
		if n := len(wordRE.FindAllString(s, -1)); n > 0 {
			lens = append(lens, n)
		}
	}
	if len(lens) == 0 {
		return 0
	}

	total := 0
	for _, n := range lens {
		total += n
	}
	avg := float64(total) / float64(len(lens))

	if avg >= 12 && avg <= 22 {
		return 100
	}
	diff := avg - 17
	if diff < 0 {
		diff = -diff
	}
	return max(0, 100-int(diff*6))
}

// hashtagScore rewards 3-6 unique hashtags.
func hashtagScore(text string) int {
	tags := Hashtags(text)
	unique := make(map[string]bool, len(tags))
	for _, tag := range tags {
		unique[strings.ToLower(tag)] = true
	}

	n := len(unique)
	if n >= 3 && n <= 6 {
		return 100
	}
	diff := n - 5
	if diff < 0 {
		diff = -diff
	}
	return max(0, 100-diff*20)
}

// shapeScore rewards short paragraphs separated by blank lines.
func shapeScore(text string) int {
	lines := 0
	short := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines++
		if len(wordRE.FindAllString(line, -1)) <= 30 {
			short++
		}
	}
	if lines == 0 {
		return 0
	}
	return short * 100 / lines
}

// Hashtags returns all hashtags in the text, in order of appearance.
func Hashtags(text string) []string {
	return hashtagRE.FindAllString(text, -1)
}

// Keywords extracts up to max of the most frequent non-stopword terms,
// longest-first on frequency ties so the result is deterministic.
func Keywords(text string, max int) []string {
	freq := map[string]int{}
	for _, w := range wordRE.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 4 || stopwords[w] {
			continue
		}
		freq[w]++
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	if len(terms) > max {
		terms = terms[:max]
	}
	return terms
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
