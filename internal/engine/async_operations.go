package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/gcbaptista/go-skillmatch/internal/corpus"
	"github.com/gcbaptista/go-skillmatch/model"
)

// ReloadAsync re-reads the configured dataset and refits its model in a
// background job. An unchanged file is served from the loader cache.
func (e *Engine) ReloadAsync() (string, error) {
	path := strings.TrimSpace(e.settings.DataPath)
	if path == "" {
		return "", fmt.Errorf("data_path is not configured")
	}
	return e.ReloadSourceAsync(corpus.NewFileSource(path))
}

// ReloadSourceAsync activates src in a background job and returns the job ID.
func (e *Engine) ReloadSourceAsync(src corpus.Source) (string, error) {
	jobID := e.jobManager.CreateJob(model.JobTypeReloadCorpus, sourceName(src), map[string]string{
		"operation": "reload_corpus",
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeReloadJob(ctx, src, jobID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start reload job: %w", err)
	}

	return jobID, nil
}

// executeReloadJob executes the reload job.
func (e *Engine) executeReloadJob(ctx context.Context, src corpus.Source, jobID string) error {
	e.jobManager.UpdateJobProgress(jobID, 0, 2, "Loading corpus")

	loaded, err := e.loader.Load(ctx, src)
	if err != nil {
		return err
	}

	e.jobManager.UpdateJobProgress(jobID, 1, 2, fmt.Sprintf("Fitting model over %d postings", loaded.Len()))
	if err := e.LoadSource(ctx, src); err != nil {
		return err
	}

	e.jobManager.UpdateJobProgress(jobID, 2, 2, "Corpus active")
	return nil
}

func sourceName(src corpus.Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	if id, err := src.Identity(); err == nil {
		return id
	}
	return "unknown"
}
