// Package corpus loads job-posting datasets into typed, immutable corpora.
package corpus

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/go-skillmatch/internal/errors"
	"github.com/gcbaptista/go-skillmatch/model"
)

// Column names of the normalized dataset.
const (
	ColumnTitle       = "title"
	ColumnDescription = "description"
	ColumnJobType     = "job_type"
	ColumnSector      = "sector"
	ColumnLocation    = "location"
	ColumnURL         = "url"
)

// RequiredColumns lists the columns every dataset must provide, in report order.
var RequiredColumns = []string{ColumnTitle, ColumnDescription, ColumnJobType, ColumnSector, ColumnLocation, ColumnURL}

// headerAliases maps alternative header names to the normalized column name.
var headerAliases = map[string]string{
	"job_title":       ColumnTitle,
	"job_description": ColumnDescription,
	"page_url":        ColumnURL,
}

// ctxCheckInterval is how many rows are parsed between context checks.
const ctxCheckInterval = 1000

// Loader reads datasets and caches the resulting corpus per source identity.
// It is safe for concurrent use; concurrent loads of one identity share a single read.
type Loader struct {
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*model.Corpus
	group singleflight.Group
}

// NewLoader creates a Loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
		cache:  make(map[string]*model.Corpus),
	}
}

// Load returns the corpus for src, reading and parsing it only on the first
// call for a given identity. Failures are *errors.DataSourceError and never
// leave a partial corpus in the cache.
func (l *Loader) Load(ctx context.Context, src Source) (*model.Corpus, error) {
	identity, err := src.Identity()
	if err != nil {
		return nil, err
	}

	if cached, ok := l.cached(identity); ok {
		return cached, nil
	}

	result, err, shared := l.group.Do(identity, func() (interface{}, error) {
		if cached, ok := l.cached(identity); ok {
			return cached, nil
		}

		startTime := time.Now()
		loaded, err := l.read(context.WithoutCancel(ctx), identity, src)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cache[identity] = loaded
		l.mu.Unlock()

		l.logger.Info("Loaded job corpus",
			zap.String("source", identity),
			zap.Int("postings", loaded.Len()),
			zap.String("fingerprint", loaded.Fingerprint()),
			zap.Duration("took", time.Since(startTime)),
		)
		return loaded, nil
	})
	if err != nil {
		l.logger.Warn("Failed to load job corpus", zap.String("source", identity), zap.Error(err))
		return nil, err
	}
	if shared {
		l.logger.Debug("Shared in-flight corpus load", zap.String("source", identity))
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewDataSourceError(resourceName(src, identity), err)
	}
	return result.(*model.Corpus), nil
}

// Invalidate drops the cached corpus for identity, if any.
func (l *Loader) Invalidate(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, identity)
}

// CachedCount returns the number of cached corpora.
func (l *Loader) CachedCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

func (l *Loader) cached(identity string) (*model.Corpus, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.cache[identity]
	return c, ok
}

func (l *Loader) read(ctx context.Context, identity string, src Source) (*model.Corpus, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			l.logger.Warn("Failed to close data source", zap.String("source", identity), zap.Error(closeErr))
		}
	}()

	resource := resourceName(src, identity)
	postings, dropped, err := Parse(ctx, resource, rc)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		l.logger.Info("Dropped incomplete postings", zap.String("source", identity), zap.Int("dropped", dropped))
	}
	return model.NewCorpus(identity, postings), nil
}

func resourceName(src Source, identity string) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return identity
}

// Parse reads a CSV dataset with a header row. Rows without a title or a
// description are dropped and counted; other missing values become "".
func Parse(ctx context.Context, resource string, r io.Reader) ([]model.JobPosting, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, errors.NewMissingColumnError(resource, RequiredColumns[0])
	}
	if err != nil {
		return nil, 0, errors.NewDataSourceError(resource, fmt.Errorf("read header: %w", err))
	}

	positions := columnPositions(header)
	for _, column := range RequiredColumns {
		if _, ok := positions[column]; !ok {
			return nil, 0, errors.NewMissingColumnError(resource, column)
		}
	}

	postings := make([]model.JobPosting, 0)
	dropped := 0
	for row := 1; ; row++ {
		if row%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, errors.NewDataSourceError(resource, err)
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, errors.NewDataSourceError(resource, fmt.Errorf("read row %d: %w", row, err))
		}

		field := func(column string) string {
			pos := positions[column]
			if pos >= len(record) {
				return ""
			}
			return record[pos]
		}

		title, description := field(ColumnTitle), field(ColumnDescription)
		if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
			dropped++
			continue
		}

		postings = append(postings, model.NewJobPosting(model.PostingFields{
			Title:       title,
			Description: description,
			JobType:     field(ColumnJobType),
			Sector:      field(ColumnSector),
			Location:    field(ColumnLocation),
			URL:         field(ColumnURL),
		}))
	}

	return postings, dropped, nil
}

// columnPositions maps normalized column names to their index in header.
// The first occurrence wins when a column appears under several names.
func columnPositions(header []string) map[string]int {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}
	return positions
}
