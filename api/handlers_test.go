package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-skillmatch/internal/engine"
	testutil "github.com/gcbaptista/go-skillmatch/internal/testing"
	"github.com/gcbaptista/go-skillmatch/model"
)

func setupTestRouter(eng *engine.Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(eng, zap.NewNop())
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		encoded, _ := json.Marshal(b)
		reader = bytes.NewReader(encoded)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHealthCheckHandler(t *testing.T) {
	t.Run("before load", func(t *testing.T) {
		router := setupTestRouter(testutil.CreateTestEngine(t, testutil.TestSettings(testutil.WriteSampleCSV(t))))
		w := performRequest(router, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, false, body["corpus_loaded"])
	})

	t.Run("after load", func(t *testing.T) {
		router := setupTestRouter(testutil.CreateLoadedEngine(t))
		w := performRequest(router, http.MethodGet, "/health", nil)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["corpus_loaded"])
	})
}

func TestRecommendHandler(t *testing.T) {
	router := setupTestRouter(testutil.CreateLoadedEngine(t))

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedCode   ErrorCode
	}{
		{
			name:           "valid request",
			requestBody:    engine.RecommendRequest{Skills: []string{"python", "sql"}, TopK: 3},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid JSON",
			requestBody:    "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidJSON,
		},
		{
			name:           "empty query",
			requestBody:    engine.RecommendRequest{Skills: []string{"  "}},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   ErrorCodeEmptyQuery,
		},
		{
			name:           "negative top_k",
			requestBody:    engine.RecommendRequest{Skills: []string{"python"}, TopK: -1},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "top_k over limit",
			requestBody:    engine.RecommendRequest{Skills: []string{"python"}, TopK: MaxTopK + 1},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/recommendations", tt.requestBody)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestRecommendHandler_Response(t *testing.T) {
	router := setupTestRouter(testutil.CreateLoadedEngine(t))

	w := performRequest(router, http.MethodPost, "/recommendations", map[string]interface{}{
		"skills": []string{"Python", "SQL"},
		"top_k":  2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rec engine.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.Len(t, rec.Matches, 2)
	assert.NotEmpty(t, rec.QueryID)
	assert.Equal(t, "Data Analyst", rec.Matches[0].Title)
	assert.Equal(t, "https://jobs.example.com/data-analyst", rec.Matches[0].URL)
	assert.Equal(t, []string{"excel", "tableau"}, rec.MissingSkills)
	assert.False(t, rec.NoMatch)
}

func TestRecommendHandler_ResumeAndNoMatch(t *testing.T) {
	router := setupTestRouter(testutil.CreateLoadedEngine(t))

	w := performRequest(router, http.MethodPost, "/recommendations", engine.RecommendRequest{
		Resume:   &model.ResumeProfile{Name: "Sam", Skills: []string{"nursing"}},
		Location: "Remote",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rec engine.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.True(t, rec.NoMatch)
	assert.Empty(t, rec.Matches)
	assert.Equal(t, []string{"nursing"}, rec.Skills)
}

func TestRecommendHandler_CorpusNotLoaded(t *testing.T) {
	router := setupTestRouter(testutil.CreateTestEngine(t, testutil.TestSettings(testutil.WriteSampleCSV(t))))

	w := performRequest(router, http.MethodPost, "/recommendations", engine.RecommendRequest{Skills: []string{"python"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, ErrorCodeCorpusNotLoaded, decodeError(t, w).Code)

	w = performRequest(router, http.MethodGet, "/corpus/stats", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecommendHandler_BodyLimit(t *testing.T) {
	settings := testutil.TestSettings(testutil.WriteSampleCSV(t))
	settings.Server.MaxBodyBytes = 64
	router := setupTestRouter(testutil.CreateTestEngine(t, settings))

	w := performRequest(router, http.MethodPost, "/recommendations", engine.RecommendRequest{
		Interests: strings.Repeat("data ", 100),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, ErrorCodeRequestTooLarge, decodeError(t, w).Code)
}

func TestSkillGapHandler(t *testing.T) {
	router := setupTestRouter(testutil.CreateTestEngine(t, testutil.TestSettings(testutil.WriteSampleCSV(t))))

	t.Run("missing skills", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/skill-gap", SkillGapRequest{
			UserSkills:   []string{"python"},
			DocumentText: "Requires Python, SQL, and Excel",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp SkillGapResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"excel", "sql"}, resp.MissingSkills)
	})

	t.Run("nothing missing", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/skill-gap", SkillGapRequest{
			UserSkills:   []string{"python", "sql", "excel"},
			DocumentText: "Requires Python, SQL, and Excel",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"missing_skills":[]}`, w.Body.String())
	})

	t.Run("missing document", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/skill-gap", SkillGapRequest{UserSkills: []string{"python"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		apiErr := decodeError(t, w)
		require.Len(t, apiErr.Details, 1)
		assert.Equal(t, "document_text", apiErr.Details[0].Field)
	})
}

func TestCorpusStatsHandler(t *testing.T) {
	router := setupTestRouter(testutil.CreateLoadedEngine(t))

	w := performRequest(router, http.MethodGet, "/corpus/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats engine.CorpusStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 5, stats.Postings)
	assert.Positive(t, stats.VocabularySize)
	assert.Len(t, stats.Fingerprint, 64)
}

func TestReloadCorpusHandler(t *testing.T) {
	eng := testutil.CreateTestEngine(t, testutil.TestSettings(testutil.WriteSampleCSV(t)))
	router := setupTestRouter(eng)

	w := performRequest(router, http.MethodPost, "/corpus/reload", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	jobID := body["job_id"]
	require.NotEmpty(t, jobID)

	job := testutil.WaitForJob(t, eng.JobManager(), jobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeReloadCorpus)

	w = performRequest(router, http.MethodGet, "/jobs/"+jobID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched model.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, model.JobStatusCompleted, fetched.Status)

	w = performRequest(router, http.MethodPost, "/recommendations", engine.RecommendRequest{Skills: []string{"python"}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReloadCorpusHandler_BadDataset(t *testing.T) {
	eng := testutil.CreateTestEngine(t, testutil.TestSettings(testutil.WriteCSV(t, "title,description\nChef,Cooking\n")))
	router := setupTestRouter(eng)

	w := performRequest(router, http.MethodPost, "/corpus/reload", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	job := testutil.WaitForJob(t, eng.JobManager(), body["job_id"], testutil.DefaultJobPollingOptions())
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Contains(t, job.Error, "job_type")
}

func TestJobHandlers(t *testing.T) {
	eng := testutil.CreateTestEngine(t, testutil.TestSettings(testutil.WriteSampleCSV(t)))
	router := setupTestRouter(eng)

	t.Run("job not found", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/jobs/does-not-exist", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, ErrorCodeJobNotFound, decodeError(t, w).Code)
	})

	jobID, err := eng.ReloadAsync()
	require.NoError(t, err)
	testutil.WaitForJob(t, eng.JobManager(), jobID, testutil.DefaultJobPollingOptions())

	t.Run("metrics", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/jobs/metrics", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Metrics struct {
				JobsCreated   int64 `json:"jobs_created"`
				JobsCompleted int64 `json:"jobs_completed"`
			} `json:"metrics"`
			SuccessRate float64 `json:"success_rate"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, int64(1), body.Metrics.JobsCreated)
		assert.Equal(t, int64(1), body.Metrics.JobsCompleted)
		assert.Equal(t, 1.0, body.SuccessRate)
	})

	t.Run("list by status", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/jobs?status=completed", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Total)

		w = performRequest(router, http.MethodGet, "/jobs?status=failed", nil)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 0, body.Total)
	})
}

func TestMiddleware(t *testing.T) {
	router := setupTestRouter(testutil.CreateLoadedEngine(t))

	t.Run("assigns request id", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/health", nil)
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})

	t.Run("echoes request id into errors", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/recommendations", strings.NewReader("{}"))
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "req-123", decodeError(t, w).RequestID)
	})

	t.Run("CORS preflight", func(t *testing.T) {
		w := performRequest(router, http.MethodOptions, "/recommendations", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestGetAnalyticsHandler(t *testing.T) {
	router := setupTestRouter(testutil.CreateLoadedEngine(t))

	performRequest(router, http.MethodPost, "/recommendations", engine.RecommendRequest{Skills: []string{"python"}})
	performRequest(router, http.MethodPost, "/recommendations", engine.RecommendRequest{Skills: []string{"python"}, Location: "Remote"})
	performRequest(router, http.MethodPost, "/recommendations", engine.RecommendRequest{})

	w := performRequest(router, http.MethodGet, "/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard model.AnalyticsDashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Equal(t, 2, dashboard.TotalRecommendations)
	assert.Equal(t, 0.5, dashboard.NoMatchRate)
	assert.Equal(t, 0.5, dashboard.FilteredRate)
	assert.Equal(t, 5, dashboard.ActivePostings)
	assert.Equal(t, []model.PopularTerm{{Term: "python", Count: 2}}, dashboard.PopularSkills)
	assert.Equal(t, []model.PopularTerm{{Term: "Data Analyst", Count: 1}}, dashboard.TopMatchedTitles)
}

func TestGetAnalyticsHandler_SkillOverlapCountsAsFiltered(t *testing.T) {
	router := setupTestRouter(testutil.CreateLoadedEngine(t))

	overlap := 1
	performRequest(router, http.MethodPost, "/recommendations", engine.RecommendRequest{Skills: []string{"python"}})
	performRequest(router, http.MethodPost, "/recommendations", engine.RecommendRequest{Skills: []string{"python"}, MinSkillOverlap: &overlap})

	w := performRequest(router, http.MethodGet, "/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard model.AnalyticsDashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Equal(t, 2, dashboard.TotalRecommendations)
	assert.Equal(t, 0.5, dashboard.FilteredRate)
}
