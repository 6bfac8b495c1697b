package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/go-skillmatch/model"
)

// maxExecutionSamples bounds the execution times kept per job type.
const maxExecutionSamples = 100

// JobMetricsData is a point-in-time copy of the job metrics, safe to serialize
type JobMetricsData struct {
	JobsCreated          int64                           `json:"jobs_created"`
	JobsCompleted        int64                           `json:"jobs_completed"`
	JobsFailed           int64                           `json:"jobs_failed"`
	JobsCancelled        int64                           `json:"jobs_cancelled"`
	TotalExecutionTime   time.Duration                   `json:"total_execution_time_ns"`
	AverageExecutionTime time.Duration                   `json:"average_execution_time_ns"`
	AverageByType        map[model.JobType]time.Duration `json:"average_execution_time_by_type_ns"`
	JobsByType           map[model.JobType]int64         `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64       `json:"jobs_by_status"`
	SuccessRate          float64                         `json:"success_rate"`
	LastUpdated          time.Time                       `json:"last_updated"`
}

// JobMetrics tracks performance metrics for job operations
type JobMetrics struct {
	mu                   sync.RWMutex
	jobsCreated          int64
	jobsCompleted        int64
	jobsFailed           int64
	jobsCancelled        int64
	totalExecutionTime   time.Duration
	jobsByType           map[model.JobType]int64
	jobsByStatus         map[model.JobStatus]int64
	executionTimesByType map[model.JobType][]time.Duration
	lastUpdated          time.Time
}

// NewJobMetrics creates a new metrics collector
func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		jobsByType:           make(map[model.JobType]int64),
		jobsByStatus:         make(map[model.JobStatus]int64),
		executionTimesByType: make(map[model.JobType][]time.Duration),
		lastUpdated:          time.Now(),
	}
}

// RecordJobCreated increments job creation counter
func (m *JobMetrics) RecordJobCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobsCreated++
	m.jobsByType[jobType]++
	m.jobsByStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// RecordJobStatusChange moves one job between status counters
func (m *JobMetrics) RecordJobStatusChange(oldStatus, newStatus model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldStatus != "" && m.jobsByStatus[oldStatus] > 0 {
		m.jobsByStatus[oldStatus]--
	}
	m.jobsByStatus[newStatus]++
	if newStatus == model.JobStatusCancelled {
		m.jobsCancelled++
	}
	m.lastUpdated = time.Now()
}

// RecordJobCompleted records successful job completion
func (m *JobMetrics) RecordJobCompleted(jobType model.JobType, executionTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobsCompleted++
	m.totalExecutionTime += executionTime

	samples := append(m.executionTimesByType[jobType], executionTime)
	if len(samples) > maxExecutionSamples {
		samples = samples[len(samples)-maxExecutionSamples:]
	}
	m.executionTimesByType[jobType] = samples

	m.lastUpdated = time.Now()
}

// RecordJobFailed records job failure
func (m *JobMetrics) RecordJobFailed(_ model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobsFailed++
	m.lastUpdated = time.Now()
}

// GetMetrics returns a copy of the current metrics
func (m *JobMetrics) GetMetrics() JobMetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := JobMetricsData{
		JobsCreated:        m.jobsCreated,
		JobsCompleted:      m.jobsCompleted,
		JobsFailed:         m.jobsFailed,
		JobsCancelled:      m.jobsCancelled,
		TotalExecutionTime: m.totalExecutionTime,
		AverageByType:      make(map[model.JobType]time.Duration, len(m.executionTimesByType)),
		JobsByType:         make(map[model.JobType]int64, len(m.jobsByType)),
		JobsByStatus:       make(map[model.JobStatus]int64, len(m.jobsByStatus)),
		SuccessRate:        m.successRateLocked(),
		LastUpdated:        m.lastUpdated,
	}
	if m.jobsCompleted > 0 {
		data.AverageExecutionTime = m.totalExecutionTime / time.Duration(m.jobsCompleted)
	}
	for k, v := range m.jobsByType {
		data.JobsByType[k] = v
	}
	for k, v := range m.jobsByStatus {
		data.JobsByStatus[k] = v
	}
	for k := range m.executionTimesByType {
		data.AverageByType[k] = m.averageLocked(k)
	}
	return data
}

// GetAverageExecutionTimeByType returns the average of the recent execution times of a job type
func (m *JobMetrics) GetAverageExecutionTimeByType(jobType model.JobType) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.averageLocked(jobType)
}

func (m *JobMetrics) averageLocked(jobType model.JobType) time.Duration {
	times := m.executionTimesByType[jobType]
	if len(times) == 0 {
		return 0
	}

	var total time.Duration
	for _, t := range times {
		total += t
	}
	return total / time.Duration(len(times))
}

// GetSuccessRate returns the success rate (0.0 to 1.0)
func (m *JobMetrics) GetSuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.successRateLocked()
}

func (m *JobMetrics) successRateLocked() float64 {
	finished := m.jobsCompleted + m.jobsFailed
	if finished == 0 {
		return 1.0 // No jobs yet, assume 100% success
	}
	return float64(m.jobsCompleted) / float64(finished)
}

// GetCurrentWorkload returns the number of pending and running jobs
func (m *JobMetrics) GetCurrentWorkload() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.jobsByStatus[model.JobStatusPending] + m.jobsByStatus[model.JobStatusRunning]
}
