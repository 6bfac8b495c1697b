package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/go-skillmatch/internal/snapshot"
	"github.com/gcbaptista/go-skillmatch/internal/vectorize"
	"github.com/gcbaptista/go-skillmatch/model"
)

// ModelCache memoizes fitted models by corpus fingerprint. At most one fit per
// fingerprint is in flight; concurrent callers wait for it and share the result.
// Snapshot stores are consulted before fitting and written after; their
// failures are logged and never fail a request.
type ModelCache struct {
	logger *zap.Logger
	opts   vectorize.Options
	stores []snapshot.Store

	mu     sync.RWMutex
	models map[string]*vectorize.Model
	group  singleflight.Group

	fits atomic.Int64
}

// NewModelCache creates a ModelCache. stores are tried in order.
func NewModelCache(logger *zap.Logger, opts vectorize.Options, stores ...snapshot.Store) *ModelCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelCache{
		logger: logger,
		opts:   opts,
		stores: stores,
		models: make(map[string]*vectorize.Model),
	}
}

// Get returns the model for corpus, fitting it if no cached or stored model exists.
func (c *ModelCache) Get(ctx context.Context, corpus *model.Corpus) (*vectorize.Model, error) {
	fingerprint := corpus.Fingerprint()
	if m, ok := c.cached(fingerprint); ok {
		return m, nil
	}

	// the shared work must not be cut short by whichever caller arrived first
	workCtx := context.WithoutCancel(ctx)
	result, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		if m, ok := c.cached(fingerprint); ok {
			return m, nil
		}

		m, storeIndex := c.loadSnapshot(workCtx, corpus)
		if m == nil {
			startTime := time.Now()
			m = vectorize.Fit(corpus, c.opts)
			c.fits.Add(1)
			c.logger.Info("Fitted model",
				zap.String("fingerprint", fingerprint),
				zap.Int("documents", m.NumDocuments()),
				zap.Int("vocabulary", m.VocabularySize()),
				zap.Duration("took", time.Since(startTime)),
			)
			storeIndex = len(c.stores)
		}
		// backfill the tiers that missed
		c.saveSnapshots(workCtx, m, storeIndex)

		c.mu.Lock()
		c.models[fingerprint] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result.(*vectorize.Model), nil
}

func (c *ModelCache) cached(fingerprint string) (*vectorize.Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[fingerprint]
	return m, ok
}

// loadSnapshot returns the first usable stored model and the index of the store it came from.
func (c *ModelCache) loadSnapshot(ctx context.Context, corpus *model.Corpus) (*vectorize.Model, int) {
	for i, store := range c.stores {
		m, err := store.Load(ctx, corpus.Fingerprint())
		if errors.Is(err, snapshot.ErrNotFound) {
			continue
		}
		if err != nil {
			c.logger.Warn("Failed to load model snapshot", zap.String("fingerprint", corpus.Fingerprint()), zap.Error(err))
			continue
		}
		if m.NumDocuments() != corpus.Len() || !sameStopWords(m, c.opts) {
			c.logger.Warn("Ignoring stale model snapshot", zap.String("fingerprint", corpus.Fingerprint()))
			continue
		}
		c.logger.Info("Loaded model snapshot", zap.String("fingerprint", corpus.Fingerprint()), zap.Int("store", i))
		return m, i
	}
	return nil, len(c.stores)
}

func (c *ModelCache) saveSnapshots(ctx context.Context, m *vectorize.Model, upTo int) {
	for i := 0; i < upTo && i < len(c.stores); i++ {
		if err := c.stores[i].Save(ctx, m); err != nil {
			c.logger.Warn("Failed to save model snapshot", zap.String("fingerprint", m.Fingerprint()), zap.Error(err))
		}
	}
}

func sameStopWords(m *vectorize.Model, opts vectorize.Options) bool {
	stored := m.ExtraStopWords()
	if len(stored) != len(opts.ExtraStopWords) {
		return false
	}
	for i := range stored {
		if stored[i] != opts.ExtraStopWords[i] {
			return false
		}
	}
	return true
}

// Evict drops the cached model for fingerprint.
func (c *ModelCache) Evict(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.models, fingerprint)
}

// Len returns the number of models held in memory.
func (c *ModelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// FitCount returns how many times a model was fitted rather than found.
func (c *ModelCache) FitCount() int64 {
	return c.fits.Load()
}
