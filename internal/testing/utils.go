// Package testing provides fixtures and helpers for testing the recommender.
package testing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-skillmatch/config"
	"github.com/gcbaptista/go-skillmatch/internal/engine"
	"github.com/gcbaptista/go-skillmatch/internal/jobs"
	"github.com/gcbaptista/go-skillmatch/model"
)

// SampleCSV is a small dataset covering several sectors, locations and job types.
const SampleCSV = `title,description,job_type,sector,location,url
Data Analyst,"Analyze data using Python, SQL and Excel. Build dashboards in Tableau.",Full-time,Information Technology,"New York, NY",https://jobs.example.com/data-analyst
Chef,Cooking and kitchen management for a busy restaurant.,Full-time,Hospitality,"Chicago, IL",https://jobs.example.com/chef
Backend Engineer,"Build Go and Java services, SQL databases and Docker deployments.",Contract,Information Technology,"Austin, TX",https://jobs.example.com/backend
Registered Nurse,Nursing care for patients in a hospital ward.,Part-time,Health Care,"Boston, MA",
Warehouse Associate,"Forklift operation, inventory and logistics support.",Full-time,Logistics,"Newark, NJ",
`

// WriteSampleCSV writes SampleCSV to a temporary file and returns its path.
func WriteSampleCSV(t *testing.T) string {
	t.Helper()
	return WriteCSV(t, SampleCSV)
}

// WriteCSV writes content to a temporary CSV file and returns its path.
func WriteCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "Failed to write test dataset")
	return path
}

// TestSettings returns defaulted settings pointing at dataPath.
func TestSettings(dataPath string) *config.Settings {
	settings := &config.Settings{
		DataPath:          dataPath,
		ParallelThreshold: 2,
		MaxWorkers:        2,
	}
	settings.ApplyDefaults()
	return settings
}

// CreateTestEngine creates an engine without an active corpus. Its job manager
// is started and stopped with the test.
func CreateTestEngine(t *testing.T, settings *config.Settings) *engine.Engine {
	t.Helper()
	manager := jobs.NewManager(settings.Jobs.MaxWorkers, zap.NewNop())
	manager.Start()
	t.Cleanup(manager.Stop)
	return engine.NewEngine(settings, zap.NewNop(), manager)
}

// CreateLoadedEngine creates an engine serving SampleCSV.
func CreateLoadedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := CreateTestEngine(t, TestSettings(WriteSampleCSV(t)))
	require.NoError(t, eng.Load(context.Background()), "Failed to load sample corpus")
	return eng
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      5 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJob polls a job until it completes, fails or times out, and returns it.
func WaitForJob(t *testing.T, manager *jobs.Manager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not finish within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := manager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted, model.JobStatusFailed, model.JobStatusCancelled:
				return job
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s", jobID, job.Progress.Current, job.Progress.Total, job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}
