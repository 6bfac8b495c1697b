package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple lowercase", "hello world", []string{"hello", "world"}},
		{"with punctuation", "hello, world!", []string{"hello", "world"}},
		{"with numbers", "item123 test", []string{"item123", "test"}},
		{"leading/trailing spaces", "  hello world  ", []string{"hello", "world"}},
		{"multiple spaces between words", "hello   world", []string{"hello", "world"}},
		{"string with hyphen", "state-of-the-art", []string{"state", "of", "the", "art"}},
		{"string with underscore", "my_variable_name", []string{"my", "variable", "name"}},
		{"all caps word", "HELLO WORLD", []string{"hello", "world"}},
		{"mixed with numbers and symbols", "API_v1.0-beta!", []string{"api", "v1", "0", "beta"}},
		{"only symbols", "!@#$%^", []string{}},
		{"only numbers", "12345 67890", []string{"12345", "67890"}},
		{"mixed case is not split", "JavaScript and PostgreSQL", []string{"javascript", "and", "postgresql"}},
		{"acronyms stay whole", "HTTPRequestManager", []string{"httprequestmanager"}},
		{"starts with digit then uppercase", "1Password", []string{"1password"}},
		{"accented letters", "Développeur café", []string{"développeur", "café"}},
		{"non-latin letters", "Инженер, данные", []string{"инженер", "данные"}},
		{"special chars in middle", "word1!@#word2", []string{"word1", "word2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTerms(t *testing.T) {
	stopWords := EnglishStopWords()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"stop words removed", "the analyst and the engineer", []string{"analyst", "engineer"}},
		{"single characters dropped", "C and R programming", []string{"programming"}},
		{"duplicates kept", "Python python PYTHON", []string{"python", "python", "python"}},
		{"only stop words", "and the of", []string{}},
		{"mixed punctuation", "Python, SQL & Excel!", []string{"python", "sql", "excel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Terms(tt.input, stopWords)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Terms(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTermCounts(t *testing.T) {
	got := TermCounts("SQL reporting and SQL analysis", EnglishStopWords())
	want := map[string]int{"sql": 2, "reporting": 1, "analysis": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TermCounts() = %v, want %v", got, want)
	}
}

func TestStopWords_With(t *testing.T) {
	base := EnglishStopWords()
	extended := base.With(" Remote ", "")

	if !extended.Contains("remote") {
		t.Error("Expected extended set to contain 'remote'")
	}
	if base.Contains("remote") {
		t.Error("With must not modify the receiver")
	}
	if !extended.Contains("the") {
		t.Error("Expected extended set to keep the base words")
	}

	var none StopWords
	if none.Contains("the") {
		t.Error("nil set should contain nothing")
	}
}

func TestTokenize_CaseInsensitive(t *testing.T) {
	pairs := [][2]string{
		{"JavaScript", "javascript"},
		{"PostgreSQL", "POSTGRESQL"},
		{"myAPI1Test", "myapi1test"},
		{"Café", "CAFÉ"},
	}
	for _, pair := range pairs {
		got, want := Tokenize(pair[0]), Tokenize(pair[1])
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Tokenize(%q) = %v, Tokenize(%q) = %v, want equal", pair[0], got, pair[1], want)
		}
	}
}

func TestTerms_MinLengthCountsRunes(t *testing.T) {
	got := Terms("é ça data", nil)
	want := []string{"ça", "data"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}
