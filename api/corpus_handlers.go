package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CorpusStatsHandler returns statistics for the active corpus
func (api *API) CorpusStatsHandler(c *gin.Context) {
	stats, err := api.engine.Stats()
	if err != nil {
		SendEngineError(c, "corpus stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ReloadCorpusHandler re-reads the configured dataset and refits the model in a
// background job. The previous corpus keeps serving until the job succeeds.
func (api *API) ReloadCorpusHandler(c *gin.Context) {
	jobID, err := api.engine.ReloadAsync()
	if err != nil {
		SendJobExecutionError(c, "corpus reload", err)
		return
	}

	api.logger.Info("Corpus reload accepted", zap.String("job_id", jobID))
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Corpus reload started",
		"job_id":  jobID,
	})
}
