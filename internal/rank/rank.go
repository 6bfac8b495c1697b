// Package rank scores a query against every posting of a corpus and returns
// the best matches.
package rank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-skillmatch/internal/vectorize"
	"github.com/gcbaptista/go-skillmatch/model"
)

// DefaultTopK is the number of matches returned when k is not positive.
const DefaultTopK = 5

// DefaultParallelThreshold is the candidate count above which scoring is split across workers.
const DefaultParallelThreshold = 2000

// ctxCheckInterval is how many documents are scored between context checks.
const ctxCheckInterval = 512

// ErrModelMismatch is returned when the model was not fit on the given corpus.
var ErrModelMismatch = errors.New("model does not belong to corpus")

// Match is one ranked posting.
type Match struct {
	Posting    model.JobPosting
	Similarity float64
	// Position is the posting's index in the corpus.
	Position int
}

// MatchPercent is the similarity as a rounded percentage.
func (m Match) MatchPercent() int {
	return int(math.Round(m.Similarity * 100))
}

// Options configures a Ranker.
type Options struct {
	DefaultTopK       int
	ParallelThreshold int
	MaxWorkers        int
}

// Ranker ranks corpora with fixed options.
type Ranker struct {
	opts Options
}

// NewRanker creates a Ranker, filling unset options with defaults.
func NewRanker(opts Options) *Ranker {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = DefaultTopK
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	return &Ranker{opts: opts}
}

// Rank ranks corpus against queryText with default options.
func Rank(ctx context.Context, m *vectorize.Model, corpus *model.Corpus, queryText string, filters Filters, k int) ([]Match, error) {
	return NewRanker(Options{}).Rank(ctx, m, corpus, queryText, filters, k)
}

// Rank embeds queryText, scores every posting that passes filters by cosine
// similarity and returns the top k, best first. Equal scores keep corpus
// order. No surviving posting yields an empty, non-nil slice.
func (r *Ranker) Rank(ctx context.Context, m *vectorize.Model, corpus *model.Corpus, queryText string, filters Filters, k int) ([]Match, error) {
	if k <= 0 {
		k = r.opts.DefaultTopK
	}
	if m.NumDocuments() != corpus.Len() || m.Fingerprint() != corpus.Fingerprint() {
		return nil, fmt.Errorf("%w: model fingerprint %s, corpus fingerprint %s", ErrModelMismatch, m.Fingerprint(), corpus.Fingerprint())
	}

	candidates := make([]int, 0, corpus.Len())
	for i := 0; i < corpus.Len(); i++ {
		if filters.Matches(corpus.At(i)) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return []Match{}, nil
	}

	query := m.Embed(queryText)
	scores := make([]float64, len(candidates))

	var err error
	if len(candidates) > r.opts.ParallelThreshold && r.opts.MaxWorkers > 1 {
		err = r.scoreParallel(ctx, m, query, candidates, scores)
	} else {
		err = scoreRange(ctx, m, query, candidates, scores, 0, len(candidates))
	}
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(candidates))
	for i, pos := range candidates {
		matches[i] = Match{Posting: corpus.At(pos), Similarity: scores[i], Position: pos}
	}
	// candidates are in corpus order, so a stable sort breaks ties by position
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Similarity > matches[b].Similarity
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// scoreParallel splits candidates into one contiguous chunk per worker.
// Every worker writes a disjoint range of scores.
func (r *Ranker) scoreParallel(ctx context.Context, m *vectorize.Model, query vectorize.Vector, candidates []int, scores []float64) error {
	workers := r.opts.MaxWorkers
	chunk := (len(candidates) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(candidates); start += chunk {
		start, end := start, start+chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		g.Go(func() error {
			return scoreRange(gctx, m, query, candidates, scores, start, end)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// errgroup cancels gctx on return; report cancellation of the caller's context only
	return ctx.Err()
}

func scoreRange(ctx context.Context, m *vectorize.Model, query vectorize.Vector, candidates []int, scores []float64, start, end int) error {
	for i := start; i < end; i++ {
		if (i-start)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		scores[i] = vectorize.Cosine(query, m.DocumentVector(candidates[i]))
	}
	return nil
}
