package rag

import (
	"math"
	"strings"
	"unicode"
)

// Lexical scores stay within [0, maxLexicalScore] so they can be added to
// cosine similarities without dominating them.
const (
	maxLexicalScore   = 0.4
	coverageWeight    = 0.25
	densityWeight     = 0.1
	densityScale      = 10.0
	headingMatchBonus = 0.1
)

var lexicalStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"can": {}, "do": {}, "does": {}, "for": {}, "from": {}, "has": {}, "have": {}, "how": {},
	"i": {}, "in": {}, "is": {}, "it": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {},
	"our": {}, "the": {}, "to": {}, "was": {}, "we": {}, "were": {}, "what": {}, "which": {},
	"who": {}, "with": {},
}

// lexicalScorer scores chunks against the terms of one query.
type lexicalScorer struct {
	terms map[string]struct{}
}

func newLexicalScorer(query string) lexicalScorer {
	terms := make(map[string]struct{})
	for _, token := range tokenize(query) {
		if _, stop := lexicalStopwords[token]; !stop {
			terms[token] = struct{}{}
		}
	}
	return lexicalScorer{terms: terms}
}

// score blends term coverage (share of distinct query terms found in the
// content), term density, and a bonus per query term in the heading. Empty
// content scores zero whatever its heading.
func (s lexicalScorer) score(content, heading string) float64 {
	if len(s.terms) == 0 {
		return 0
	}
	tokens := tokenize(content)
	if len(tokens) == 0 {
		return 0
	}

	matched := make(map[string]struct{}, len(s.terms))
	var hits int
	for _, token := range tokens {
		if _, ok := s.terms[token]; ok {
			matched[token] = struct{}{}
			hits++
		}
	}

	coverage := float64(len(matched)) / float64(len(s.terms))
	density := math.Min(1, float64(hits)/float64(len(tokens))*densityScale)
	score := coverage*coverageWeight + density*densityWeight

	seen := make(map[string]struct{})
	for _, token := range tokenize(heading) {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if _, ok := s.terms[token]; ok {
			score += headingMatchBonus
		}
	}

	return math.Min(score, maxLexicalScore)
}

// tokenize lower-cases text and splits it on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
