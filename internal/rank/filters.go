package rank

import (
	"strings"

	"github.com/gcbaptista/go-skillmatch/internal/skillgap"
	"github.com/gcbaptista/go-skillmatch/model"
)

// Filters narrows the candidate postings before ranking. Text filters are
// case-insensitive substring matches; an empty value excludes nothing.
type Filters struct {
	Location string `json:"location,omitempty"`
	JobType  string `json:"job_type,omitempty"`
	Sector   string `json:"sector,omitempty"`

	// Skills and MinSkillOverlap require a posting to mention at least
	// MinSkillOverlap of the given skills. Zero disables the check.
	Skills          []string `json:"skills,omitempty"`
	MinSkillOverlap int      `json:"min_skill_overlap,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return strings.TrimSpace(f.Location) == "" &&
		strings.TrimSpace(f.JobType) == "" &&
		strings.TrimSpace(f.Sector) == "" &&
		f.MinSkillOverlap <= 0
}

// Matches reports whether posting passes every filter.
func (f Filters) Matches(posting model.JobPosting) bool {
	if !containsFold(posting.Location(), f.Location) {
		return false
	}
	if !containsFold(posting.JobType(), f.JobType) {
		return false
	}
	if !containsFold(posting.Sector(), f.Sector) {
		return false
	}
	if f.MinSkillOverlap > 0 {
		if skillgap.CountMentioned(posting.SearchableText(), f.Skills) < f.MinSkillOverlap {
			return false
		}
	}
	return true
}

// containsFold checks if a field contains a value, ignoring case
func containsFold(field, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(value))
}
