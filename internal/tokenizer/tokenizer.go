package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTermLength is the shortest token kept as a vocabulary term.
const MinTermLength = 2

// Tokenize converts a string into a slice of tokens.
// It lowercases the string and splits it on every rune that is neither a
// letter nor a digit, so the same word yields the same tokens in any case.
func Tokenize(text string) []string {
	lowerText := strings.ToLower(text)

	split := strings.FieldsFunc(lowerText, isSeparator)

	tokens := make([]string, 0, len(split)) // never nil
	tokens = append(tokens, split...)
	return tokens
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Terms tokenizes text and keeps only tokens usable as weighting terms:
// at least MinTermLength characters and not a stop word. Duplicates are kept,
// since callers count term frequency.
func Terms(text string, stopWords StopWords) []string {
	tokens := Tokenize(text)

	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if utf8.RuneCountInString(token) < MinTermLength {
			continue
		}
		if stopWords.Contains(token) {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TermCounts returns the frequency of every term in text.
func TermCounts(text string, stopWords StopWords) map[string]int {
	counts := make(map[string]int)
	for _, term := range Terms(text, stopWords) {
		counts[term]++
	}
	return counts
}
