// Package engine ties the corpus loader, the model cache, the ranker and the
// skill-gap detector together behind a single recommendation entry point.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-skillmatch/config"
	"github.com/gcbaptista/go-skillmatch/internal/corpus"
	"github.com/gcbaptista/go-skillmatch/internal/errors"
	"github.com/gcbaptista/go-skillmatch/internal/jobs"
	"github.com/gcbaptista/go-skillmatch/internal/rank"
	"github.com/gcbaptista/go-skillmatch/internal/skillgap"
	"github.com/gcbaptista/go-skillmatch/internal/snapshot"
	"github.com/gcbaptista/go-skillmatch/internal/vectorize"
	"github.com/gcbaptista/go-skillmatch/model"
)

const tracerName = "github.com/gcbaptista/go-skillmatch/internal/engine"

// RecommendRequest is one user's query.
type RecommendRequest struct {
	Skills     []string             `json:"skills"`
	Interests  string               `json:"interests"`
	Experience string               `json:"experience"`
	Location   string               `json:"location"`
	JobType    string               `json:"job_type"`
	Sector     string               `json:"sector"`
	TopK       int                  `json:"top_k"`
	Resume     *model.ResumeProfile `json:"resume,omitempty"`
	// MinSkillOverlap overrides the configured skill-overlap filter when set.
	MinSkillOverlap *int `json:"min_skill_overlap,omitempty"`
}

// MatchView is a ranked posting prepared for presentation.
type MatchView struct {
	Title          string   `json:"title"`
	Location       string   `json:"location"`
	JobType        string   `json:"job_type"`
	Sector         string   `json:"sector"`
	Description    string   `json:"description"`
	URL            string   `json:"url,omitempty"`
	Similarity     float64  `json:"similarity"`
	MatchPercent   int      `json:"match_percent"`
	MatchingSkills []string `json:"matching_skills"`
}

// Recommendation is the answer to a RecommendRequest. MissingSkills refers to
// the top match. An empty Matches with NoMatch set is a valid answer.
type Recommendation struct {
	QueryID       string      `json:"query_id"`
	Query         string      `json:"query"`
	Skills        []string    `json:"skills"`
	Matches       []MatchView `json:"matches"`
	MissingSkills []string    `json:"missing_skills"`
	NoMatch       bool        `json:"no_match"`
	// Filtered is set when any filter, including the skill overlap, narrowed the candidates.
	Filtered bool `json:"filtered"`
}

// CorpusStats describes the active corpus and model.
type CorpusStats struct {
	Source         string `json:"source"`
	Postings       int    `json:"postings"`
	VocabularySize int    `json:"vocabulary_size"`
	Fingerprint    string `json:"fingerprint"`
}

// active is the corpus currently served together with its model.
type active struct {
	corpus *model.Corpus
	model  *vectorize.Model
}

// Engine serves recommendations from the active corpus. It is safe for concurrent use.
type Engine struct {
	logger     *zap.Logger
	settings   *config.Settings
	loader     *corpus.Loader
	models     *ModelCache
	ranker     *rank.Ranker
	jobManager *jobs.Manager
	tracer     trace.Tracer

	mu      sync.RWMutex
	current *active
}

// NewEngine creates an engine. No corpus is active until Load or LoadSource succeeds.
func NewEngine(settings *config.Settings, logger *zap.Logger, jobManager *jobs.Manager, stores ...snapshot.Store) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if jobManager == nil {
		jobManager = jobs.NewManager(settings.Jobs.MaxWorkers, logger)
	}
	return &Engine{
		logger:   logger,
		settings: settings,
		loader:   corpus.NewLoader(logger.Named("corpus")),
		models:   NewModelCache(logger.Named("models"), vectorize.Options{ExtraStopWords: settings.ExtraStopWords}, stores...),
		ranker: rank.NewRanker(rank.Options{
			DefaultTopK:       settings.DefaultTopK,
			ParallelThreshold: settings.ParallelThreshold,
			MaxWorkers:        settings.MaxWorkers,
		}),
		jobManager: jobManager,
		tracer:     otel.Tracer(tracerName),
	}
}

// Load activates the dataset at the configured data path.
func (e *Engine) Load(ctx context.Context) error {
	if strings.TrimSpace(e.settings.DataPath) == "" {
		return errors.NewDataSourceError("<unset>", fmt.Errorf("data_path is not configured"))
	}
	return e.LoadSource(ctx, corpus.NewFileSource(e.settings.DataPath))
}

// LoadSource loads src, fits (or finds) its model and makes it the active corpus.
// On failure the previously active corpus stays in place.
func (e *Engine) LoadSource(ctx context.Context, src corpus.Source) error {
	ctx, span := e.tracer.Start(ctx, "Engine.LoadSource")
	defer span.End()

	loaded, err := e.loader.Load(ctx, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load corpus")
		return err
	}
	span.SetAttributes(attribute.Int("corpus.postings", loaded.Len()), attribute.String("corpus.fingerprint", loaded.Fingerprint()))

	m, err := e.fit(ctx, loaded)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fit model")
		return err
	}

	e.mu.Lock()
	previous := e.current
	e.current = &active{corpus: loaded, model: m}
	e.mu.Unlock()

	if previous != nil && previous.corpus.Source() != loaded.Source() {
		e.loader.Invalidate(previous.corpus.Source())
	}
	if previous != nil && previous.corpus.Fingerprint() != loaded.Fingerprint() {
		e.models.Evict(previous.corpus.Fingerprint())
	}
	e.logger.Info("Activated corpus",
		zap.String("source", loaded.Source()),
		zap.Int("postings", loaded.Len()),
		zap.Int("vocabulary", m.VocabularySize()),
	)
	return nil
}

func (e *Engine) fit(ctx context.Context, c *model.Corpus) (*vectorize.Model, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Fit")
	defer span.End()
	return e.models.Get(ctx, c)
}

func (e *Engine) activeState() (*active, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return nil, errors.ErrCorpusNotLoaded
	}
	return e.current, nil
}

// Recommend ranks the active corpus against the user's skills, interests and
// experience and reports the skills the best match asks for that the user lacks.
func (e *Engine) Recommend(ctx context.Context, req RecommendRequest) (*Recommendation, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Recommend")
	defer span.End()

	skills := userSkills(req)
	if len(skills) == 0 && strings.TrimSpace(req.Interests) == "" {
		err := errors.NewEmptyQueryError("")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if req.TopK < 0 {
		return nil, errors.NewValidationError("top_k", "must not be negative")
	}

	state, err := e.activeState()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	query := BuildQuery(skills, req.Interests, req.Experience)
	filters := rank.Filters{
		Location:        req.Location,
		JobType:         req.JobType,
		Sector:          req.Sector,
		Skills:          skills,
		MinSkillOverlap: e.settings.MinSkillOverlap,
	}
	if req.MinSkillOverlap != nil {
		filters.MinSkillOverlap = *req.MinSkillOverlap
	}

	rankCtx, rankSpan := e.tracer.Start(ctx, "Engine.Rank")
	matches, err := e.ranker.Rank(rankCtx, state.model, state.corpus, query, filters, req.TopK)
	rankSpan.SetAttributes(attribute.Int("rank.matches", len(matches)))
	rankSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rank")
		return nil, err
	}

	rec := &Recommendation{
		QueryID:       uuid.New().String(),
		Query:         query,
		Skills:        skills,
		Matches:       make([]MatchView, 0, len(matches)),
		MissingSkills: []string{},
		NoMatch:       len(matches) == 0,
		Filtered:      !filters.IsEmpty(),
	}
	for _, match := range matches {
		rec.Matches = append(rec.Matches, e.view(match, skills))
	}
	if len(matches) > 0 {
		rec.MissingSkills = skillgap.DetectMissing(skills, matches[0].Posting.Description(), e.settings.SkillVocabulary)
	}

	e.logger.Debug("Served recommendation",
		zap.String("query_id", rec.QueryID),
		zap.Int("matches", len(rec.Matches)),
		zap.Bool("no_match", rec.NoMatch),
	)
	return rec, nil
}

func (e *Engine) view(match rank.Match, skills []string) MatchView {
	p := match.Posting
	return MatchView{
		Title:          p.Title(),
		Location:       p.Location(),
		JobType:        p.JobType(),
		Sector:         p.Sector(),
		Description:    p.DescriptionPreview(e.settings.DescriptionPreviewChars),
		URL:            p.URL(),
		Similarity:     match.Similarity,
		MatchPercent:   match.MatchPercent(),
		MatchingSkills: skillgap.Matching(skills, p.Description(), e.settings.SkillVocabulary),
	}
}

// userSkills merges the typed skills with the resume's, normalized and de-duplicated.
func userSkills(req RecommendRequest) []string {
	all := append([]string(nil), req.Skills...)
	if req.Resume != nil {
		all = append(all, req.Resume.Skills...)
	}
	return model.NormalizeSkills(all...)
}

// BuildQuery joins skills, interests and experience into the text that is ranked.
func BuildQuery(skills []string, interests, experience string) string {
	return strings.Join(skills, " ") + " " + interests + " " + experience
}

// SkillGap reports the vocabulary skills documentText mentions that userSkills lacks.
func (e *Engine) SkillGap(userSkills []string, documentText string) []string {
	return skillgap.DetectMissing(model.NormalizeSkills(userSkills...), documentText, e.settings.SkillVocabulary)
}

// Stats describes the active corpus.
func (e *Engine) Stats() (CorpusStats, error) {
	state, err := e.activeState()
	if err != nil {
		return CorpusStats{}, err
	}
	return CorpusStats{
		Source:         state.corpus.Source(),
		Postings:       state.corpus.Len(),
		VocabularySize: state.model.VocabularySize(),
		Fingerprint:    state.corpus.Fingerprint(),
	}, nil
}

// Settings returns the engine settings.
func (e *Engine) Settings() *config.Settings {
	return e.settings
}

// JobManager returns the manager that runs the engine's background jobs.
func (e *Engine) JobManager() *jobs.Manager {
	return e.jobManager
}

// ModelCache returns the engine's model cache.
func (e *Engine) ModelCache() *ModelCache {
	return e.models
}
