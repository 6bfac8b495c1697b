package skillgap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testVocabulary = []string{"python", "sql", "excel", "java", "c++", "node.js", "r", "go"}

func TestMentions(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		skill    string
		expected bool
	}{
		{"plain word", "Requires Python and SQL", "python", true},
		{"case insensitive skill", "requires python", "PYTHON", true},
		{"punctuation boundary", "Requires Python, SQL, and Excel.", "excel", true},
		{"substring is not a word", "JavaScript developer", "java", false},
		{"symbols in skill", "Modern C++ and Node.js", "c++", true},
		{"dotted skill", "Modern C++ and Node.js", "node.js", true},
		{"single letter", "Experience with R or SAS", "r", true},
		{"single letter inside word", "Experience required", "r", false},
		{"later occurrence matches", "golang and go", "go", true},
		{"empty skill", "anything", "  ", false},
		{"empty text", "", "python", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Mentions(tt.text, tt.skill))
		})
	}
}

func TestDetectMissing(t *testing.T) {
	tests := []struct {
		name       string
		userSkills []string
		document   string
		expected   []string
	}{
		{
			name:       "reports unowned skills sorted",
			userSkills: []string{"python"},
			document:   "Requires Python, SQL, and Excel",
			expected:   []string{"excel", "sql"},
		},
		{
			name:       "user skills compared case-insensitively and trimmed",
			userSkills: []string{" SQL ", "Excel"},
			document:   "Requires Python, SQL, and Excel",
			expected:   []string{"python"},
		},
		{
			name:       "no gap",
			userSkills: []string{"python", "sql", "excel"},
			document:   "Requires Python, SQL, and Excel",
			expected:   []string{},
		},
		{
			name:       "document mentions nothing from the vocabulary",
			userSkills: nil,
			document:   "Cooking and kitchen management",
			expected:   []string{},
		},
		{
			name:       "skills with symbols",
			userSkills: []string{"java"},
			document:   "Java, C++ and Node.js services",
			expected:   []string{"c++", "node.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectMissing(tt.userSkills, tt.document, testVocabulary))
		})
	}
}

func TestDetectMissing_DuplicateVocabulary(t *testing.T) {
	vocab := []string{"SQL", "sql", " sql", "python"}
	assert.Equal(t, []string{"python", "sql"}, DetectMissing(nil, "python and sql", vocab))
}

func TestDetectMissing_Monotonic(t *testing.T) {
	document := "Requires Python, SQL, Excel, Java and C++"

	base := DetectMissing([]string{"python"}, document, testVocabulary)
	grown := DetectMissing([]string{"python", "sql", "rust"}, document, testVocabulary)

	assert.Subset(t, base, grown, "adding user skills never adds missing skills")
	assert.NotContains(t, grown, "sql")
}

func TestMatching(t *testing.T) {
	got := Matching([]string{"Python", "Excel", "Haskell"}, "Requires Python, SQL, and Excel", testVocabulary)
	assert.Equal(t, []string{"excel", "python"}, got)

	assert.Equal(t, []string{}, Matching(nil, "Requires Python", testVocabulary))
}

func TestCountMentioned(t *testing.T) {
	text := "Python and SQL reporting"
	assert.Equal(t, 2, CountMentioned(text, []string{"python", "SQL", "sql", "excel"}))
	assert.Equal(t, 0, CountMentioned(text, nil))
}
