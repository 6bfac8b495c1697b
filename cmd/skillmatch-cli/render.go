package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/gcbaptista/go-skillmatch/internal/engine"
)

const (
	noMatchMessage    = "No matching jobs found. Try different keywords or broader location."
	emptyQueryMessage = "Please enter at least one skill to proceed."
)

// renderer writes recommendations for a terminal.
type renderer struct {
	out     io.Writer
	title   *color.Color
	label   *color.Color
	percent *color.Color
	link    *color.Color
	warning *color.Color
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{
		out:     out,
		title:   color.New(color.FgCyan, color.Bold),
		label:   color.New(color.Faint),
		percent: color.New(color.FgGreen, color.Bold),
		link:    color.New(color.FgBlue, color.Underline),
		warning: color.New(color.FgYellow),
	}
}

func (r *renderer) Recommendation(rec *engine.Recommendation) {
	if rec.NoMatch || len(rec.Matches) == 0 {
		r.warning.Fprintln(r.out, noMatchMessage)
		return
	}

	for i, match := range rec.Matches {
		r.title.Fprintf(r.out, "%d. %s", i+1, match.Title)
		fmt.Fprint(r.out, "  ")
		r.percent.Fprintf(r.out, "%d%% match\n", match.MatchPercent)

		r.field("Location", joinNonEmpty(" | ", match.Location, match.JobType))
		r.field("Sector", match.Sector)
		if len(match.MatchingSkills) > 0 {
			r.field("Matching skills", strings.Join(match.MatchingSkills, ", "))
		}
		if match.Description != "" {
			fmt.Fprintf(r.out, "   %s\n", match.Description)
		}
		if match.URL != "" {
			fmt.Fprint(r.out, "   ")
			r.link.Fprintln(r.out, match.URL)
		}
		fmt.Fprintln(r.out)
	}

	if len(rec.MissingSkills) > 0 {
		r.warning.Fprintf(r.out, "Skills to develop for %s: %s\n", rec.Matches[0].Title, strings.Join(rec.MissingSkills, ", "))
	}
}

func (r *renderer) EmptyQuery() {
	r.warning.Fprintln(r.out, emptyQueryMessage)
}

func (r *renderer) Error(err error) {
	color.New(color.FgRed).Fprintf(r.out, "Error: %v\n", err)
}

func (r *renderer) field(name, value string) {
	if value == "" {
		return
	}
	r.label.Fprintf(r.out, "   %s: ", name)
	fmt.Fprintln(r.out, value)
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
