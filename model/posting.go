package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// JobPosting is an immutable job listing. SearchableText is derived from the
// description, job type and sector and is recomputed by every constructor and
// With* method; it is never set directly.
type JobPosting struct {
	title          string
	description    string
	jobType        string
	sector         string
	location       string
	url            string
	searchableText string
}

// PostingFields carries the raw column values of a posting.
type PostingFields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	JobType     string `json:"job_type"`
	Sector      string `json:"sector"`
	Location    string `json:"location"`
	URL         string `json:"url,omitempty"`
}

// NewJobPosting builds a posting from its fields.
func NewJobPosting(f PostingFields) JobPosting {
	p := JobPosting{
		title:       f.Title,
		description: f.Description,
		jobType:     f.JobType,
		sector:      f.Sector,
		location:    f.Location,
		url:         f.URL,
	}
	p.searchableText = buildSearchableText(p.description, p.jobType, p.sector)
	return p
}

func buildSearchableText(description, jobType, sector string) string {
	return description + " " + jobType + " " + sector
}

func (p JobPosting) Title() string          { return p.title }
func (p JobPosting) Description() string    { return p.description }
func (p JobPosting) JobType() string        { return p.jobType }
func (p JobPosting) Sector() string         { return p.sector }
func (p JobPosting) Location() string       { return p.location }
func (p JobPosting) URL() string            { return p.url }
func (p JobPosting) SearchableText() string { return p.searchableText }

// Fields returns the raw column values.
func (p JobPosting) Fields() PostingFields {
	return PostingFields{
		Title:       p.title,
		Description: p.description,
		JobType:     p.jobType,
		Sector:      p.sector,
		Location:    p.location,
		URL:         p.url,
	}
}

// WithDescription returns a copy with a new description.
func (p JobPosting) WithDescription(description string) JobPosting {
	f := p.Fields()
	f.Description = description
	return NewJobPosting(f)
}

// WithJobType returns a copy with a new job type.
func (p JobPosting) WithJobType(jobType string) JobPosting {
	f := p.Fields()
	f.JobType = jobType
	return NewJobPosting(f)
}

// WithSector returns a copy with a new sector.
func (p JobPosting) WithSector(sector string) JobPosting {
	f := p.Fields()
	f.Sector = sector
	return NewJobPosting(f)
}

// DescriptionPreview returns at most maxChars runes of the description,
// followed by "..." when it was cut.
func (p JobPosting) DescriptionPreview(maxChars int) string {
	runes := []rune(p.description)
	if maxChars <= 0 || len(runes) <= maxChars {
		return p.description
	}
	return string(runes[:maxChars]) + "..."
}

// Corpus is an ordered, read-only collection of postings loaded from one source.
type Corpus struct {
	postings    []JobPosting
	source      string
	fingerprint string
}

// NewCorpus copies postings into a new Corpus and computes its fingerprint.
func NewCorpus(source string, postings []JobPosting) *Corpus {
	owned := make([]JobPosting, len(postings))
	copy(owned, postings)
	return &Corpus{
		postings:    owned,
		source:      source,
		fingerprint: fingerprintPostings(owned),
	}
}

// Len returns the number of postings.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.postings)
}

// At returns the posting at position i.
func (c *Corpus) At(i int) JobPosting {
	return c.postings[i]
}

// Postings returns a copy of the postings in corpus order.
func (c *Corpus) Postings() []JobPosting {
	if c == nil {
		return []JobPosting{}
	}
	out := make([]JobPosting, len(c.postings))
	copy(out, c.postings)
	return out
}

// Source returns the identity of the data source the corpus was loaded from.
func (c *Corpus) Source() string {
	return c.source
}

// Fingerprint is a content hash of every posting, in order. Two corpora with
// the same postings have the same fingerprint regardless of source.
func (c *Corpus) Fingerprint() string {
	if c == nil {
		return fingerprintPostings(nil)
	}
	return c.fingerprint
}

func fingerprintPostings(postings []JobPosting) string {
	h := sha256.New()
	for _, p := range postings {
		for _, field := range []string{p.title, p.description, p.jobType, p.sector, p.location, p.url} {
			// length-prefix each field so that field boundaries are unambiguous
			h.Write([]byte{byte(len(field) >> 24), byte(len(field) >> 16), byte(len(field) >> 8), byte(len(field))})
			h.Write([]byte(field))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ResumeProfile is the structured record produced by an external resume parser.
type ResumeProfile struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Phone  string   `json:"phone"`
	Skills []string `json:"skills"`
}

// NormalizeSkills trims, lowercases and de-duplicates skills, preserving
// first-seen order. Entries that may hold comma-separated lists are split.
func NormalizeSkills(skills ...string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(skills))
	for _, entry := range skills {
		for _, skill := range strings.Split(entry, ",") {
			skill = strings.ToLower(strings.TrimSpace(skill))
			if skill == "" {
				continue
			}
			if _, dup := seen[skill]; dup {
				continue
			}
			seen[skill] = struct{}{}
			out = append(out, skill)
		}
	}
	return out
}
