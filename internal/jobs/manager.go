// Package jobs runs background operations such as corpus reloads and tracks their status.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-skillmatch/internal/errors"
	"github.com/gcbaptista/go-skillmatch/model"
)

// JobFunc is the body of a background job. ctx is cancelled when the manager stops.
type JobFunc func(ctx context.Context, job *model.Job) error

// Manager handles background job execution and tracking
type Manager struct {
	logger *zap.Logger

	mu       sync.RWMutex
	jobs     map[string]*model.Job
	workers  chan struct{} // Limits concurrent jobs
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
	metrics  *JobMetrics
}

// NewManager creates a new job manager with specified worker count
func NewManager(maxWorkers int, logger *zap.Logger) *Manager {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		logger:  logger,
		jobs:    make(map[string]*model.Job),
		workers: make(chan struct{}, maxWorkers),
		ctx:     ctx,
		cancel:  cancel,
		metrics: NewJobMetrics(),
	}
}

// Start begins the job manager and starts background cleanup
func (m *Manager) Start() {
	m.logger.Info("Job manager started", zap.Int("max_workers", cap(m.workers)))
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
		m.logger.Info("Job manager stopped")
	})
}

// CreateJob creates a new pending job for source and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, source string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Source:    source,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.metrics.RecordJobCreated(jobType)
	m.logger.Info("Created job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)), zap.String("source", source))
	return job.ID
}

// GetJob retrieves a copy of a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns the jobs of a source, optionally filtered by status. An empty source lists every job.
func (m *Manager) ListJobs(source string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0)
	for _, job := range m.jobs {
		if source != "" && job.Source != source {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	return result
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}

// ExecuteJob runs a pending job in the background. The job stays pending until
// a worker slot is free; ExecuteJob itself never blocks on a slot.
func (m *Manager) ExecuteJob(jobID string, jobFunc JobFunc) error {
	if m.ctx.Err() != nil {
		m.updateJobStatus(jobID, model.JobStatusCancelled, "Job manager shutting down")
		return fmt.Errorf("job manager is shutting down")
	}

	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	jobCopy := copyJob(job)
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		// Acquire worker slot
		select {
		case m.workers <- struct{}{}:
		case <-m.ctx.Done():
			m.updateJobStatus(jobID, model.JobStatusCancelled, "Job manager shutting down")
			return
		}
		defer func() { <-m.workers }()

		m.updateJobStatus(jobID, model.JobStatusRunning, "")
		startTime := time.Now()

		err := jobFunc(m.ctx, jobCopy)
		executionTime := time.Since(startTime)

		switch {
		case err != nil && m.ctx.Err() != nil:
			m.updateJobStatus(jobID, model.JobStatusCancelled, err.Error())
			m.logger.Warn("Job cancelled", zap.String("job_id", jobID), zap.Duration("after", executionTime), zap.Error(err))
		case err != nil:
			m.metrics.RecordJobFailed(jobCopy.Type)
			m.updateJobStatus(jobID, model.JobStatusFailed, err.Error())
			m.logger.Error("Job failed", zap.String("job_id", jobID), zap.Duration("after", executionTime), zap.Error(err))
		default:
			m.metrics.RecordJobCompleted(jobCopy.Type, executionTime)
			m.updateJobStatus(jobID, model.JobStatusCompleted, "")
			m.logger.Info("Job completed", zap.String("job_id", jobID), zap.Duration("took", executionTime))
		}
	}()

	return nil
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}

	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// updateJobStatus updates the status of a job (internal method)
func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	now := time.Now()
	switch status {
	case model.JobStatusRunning:
		job.StartedAt = &now
	case model.JobStatusCompleted, model.JobStatusFailed, model.JobStatusCancelled:
		job.CompletedAt = &now
	}

	m.metrics.RecordJobStatusChange(oldStatus, status)
}

// cleanupRoutine runs periodic job cleanup
func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(24 * time.Hour)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than the specified duration
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0

	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Info("Cleaned up old jobs", zap.Int("count", cleaned))
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}

// GetJobSuccessRate returns the overall job success rate
func (m *Manager) GetJobSuccessRate() float64 {
	return m.metrics.GetSuccessRate()
}

// GetCurrentWorkload returns the number of pending and running jobs
func (m *Manager) GetCurrentWorkload() int64 {
	return m.metrics.GetCurrentWorkload()
}
