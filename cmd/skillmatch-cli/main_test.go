package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-skillmatch/internal/engine"
	testutil "github.com/gcbaptista/go-skillmatch/internal/testing"
)

func plainOutput(t *testing.T) {
	t.Helper()
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })
}

func runCLI(t *testing.T, opts options, input string) string {
	t.Helper()
	plainOutput(t)
	chdir(t, t.TempDir())
	if opts.dataPath == "" {
		opts.dataPath = testutil.WriteSampleCSV(t)
	}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, strings.NewReader(input), &out))
	return out.String()
}

func TestRun_Skills(t *testing.T) {
	out := runCLI(t, options{skills: "Python, SQL", topK: 2}, "")

	assert.Contains(t, out, "1. Data Analyst")
	assert.Contains(t, out, "2. Backend Engineer")
	assert.Contains(t, out, "Location: New York, NY | Full-time")
	assert.Contains(t, out, "https://jobs.example.com/data-analyst")
	assert.Contains(t, out, "Matching skills: python, sql")
	assert.Contains(t, out, "Skills to develop for Data Analyst: excel, tableau")
	assert.NotContains(t, out, "3. ")
}

func TestRun_NoMatch(t *testing.T) {
	out := runCLI(t, options{skills: "python", location: "Remote"}, "")
	assert.Equal(t, noMatchMessage+"\n", out)
}

func TestRun_Interactive(t *testing.T) {
	out := runCLI(t, options{topK: 1}, "\n  \nnursing\nexit\npython\n")

	assert.Equal(t, 2, strings.Count(out, emptyQueryMessage))
	assert.Contains(t, out, "1. Registered Nurse")
	assert.NotContains(t, out, "Data Analyst")
}

func TestRun_MissingDataset(t *testing.T) {
	plainOutput(t)
	chdir(t, t.TempDir())

	var out bytes.Buffer
	err := run(context.Background(), options{dataPath: "missing.csv", skills: "python"}, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestRenderer(t *testing.T) {
	plainOutput(t)

	t.Run("empty query", func(t *testing.T) {
		var out bytes.Buffer
		newRenderer(&out).EmptyQuery()
		assert.Equal(t, "Please enter at least one skill to proceed.\n", out.String())
	})

	t.Run("no match", func(t *testing.T) {
		var out bytes.Buffer
		newRenderer(&out).Recommendation(&engine.Recommendation{NoMatch: true, Matches: []engine.MatchView{}})
		assert.Equal(t, "No matching jobs found. Try different keywords or broader location.\n", out.String())
	})

	t.Run("match without optional fields", func(t *testing.T) {
		var out bytes.Buffer
		newRenderer(&out).Recommendation(&engine.Recommendation{
			Matches:       []engine.MatchView{{Title: "Chef", Sector: "Hospitality", MatchPercent: 42}},
			MissingSkills: []string{},
		})
		assert.Equal(t, "1. Chef  42% match\n   Sector: Hospitality\n\n", out.String())
	})

	t.Run("error", func(t *testing.T) {
		var out bytes.Buffer
		newRenderer(&out).Error(errors.New("boom"))
		assert.Equal(t, "Error: boom\n", out.String())
	})
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "Austin, TX | Contract", joinNonEmpty(" | ", "Austin, TX", "Contract"))
	assert.Equal(t, "Contract", joinNonEmpty(" | ", " ", "Contract"))
	assert.Equal(t, "", joinNonEmpty(" | "))
}
