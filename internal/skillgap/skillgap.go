// Package skillgap compares a user's skills with the skills a job posting asks for.
package skillgap

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mentions reports whether text contains skill as a whole word, ignoring case.
// A word boundary is the start or end of text or any rune that is not a letter
// or digit, so skills with punctuation such as "c++" or "node.js" match.
func Mentions(text, skill string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	if skill == "" {
		return false
	}
	return mentionsLower(strings.ToLower(text), skill)
}

func mentionsLower(text, skill string) bool {
	offset := 0
	for {
		idx := strings.Index(text[offset:], skill)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(skill)
		if isBoundaryBefore(text, start) && isBoundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func isBoundaryBefore(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !isWordRune(r)
}

func isBoundaryAfter(text string, pos int) bool {
	if pos >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// DetectMissing returns the vocabulary skills that documentText mentions but
// userSkills does not contain. The result is lowercased, de-duplicated and
// sorted; an empty result means no gap.
func DetectMissing(userSkills []string, documentText string, vocabulary []string) []string {
	have := toSet(userSkills)
	return collect(documentText, vocabulary, func(skill string) bool {
		_, ok := have[skill]
		return !ok
	})
}

// Matching returns the vocabulary skills that documentText mentions and
// userSkills contains, in the same form as DetectMissing.
func Matching(userSkills []string, documentText string, vocabulary []string) []string {
	have := toSet(userSkills)
	return collect(documentText, vocabulary, func(skill string) bool {
		_, ok := have[skill]
		return ok
	})
}

// CountMentioned returns how many distinct skills text mentions.
func CountMentioned(text string, skills []string) int {
	lowerText := strings.ToLower(text)
	count := 0
	for skill := range toSet(skills) {
		if mentionsLower(lowerText, skill) {
			count++
		}
	}
	return count
}

func collect(documentText string, vocabulary []string, keep func(skill string) bool) []string {
	lowerText := strings.ToLower(documentText)
	found := make(map[string]struct{})
	for _, skill := range vocabulary {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if _, seen := found[skill]; seen {
			continue
		}
		if keep(skill) && mentionsLower(lowerText, skill) {
			found[skill] = struct{}{}
		}
	}

	result := make([]string, 0, len(found))
	for skill := range found {
		result = append(result, skill)
	}
	sort.Strings(result)
	return result
}

func toSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}
