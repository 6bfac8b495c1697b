package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-skillmatch/internal/engine"
	"github.com/gcbaptista/go-skillmatch/model"
)

// SkillGapRequest asks which vocabulary skills a document mentions that the user lacks.
type SkillGapRequest struct {
	UserSkills   []string `json:"user_skills"`
	DocumentText string   `json:"document_text"`
}

// SkillGapResponse lists the missing skills, sorted.
type SkillGapResponse struct {
	MissingSkills []string `json:"missing_skills"`
}

// RecommendHandler ranks the active corpus against the request.
// Request Body: engine.RecommendRequest
func (api *API) RecommendHandler(c *gin.Context) {
	startTime := time.Now()

	var req engine.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if result := ValidateRecommendRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	rec, err := api.engine.Recommend(c.Request.Context(), req)
	if err != nil {
		SendEngineError(c, "recommendation", err)
		return
	}

	event := model.RecommendationEvent{
		QueryID:      rec.QueryID,
		Skills:       rec.Skills,
		Filtered:     rec.Filtered,
		MatchCount:   len(rec.Matches),
		NoMatch:      rec.NoMatch,
		ResponseTime: time.Since(startTime),
	}
	if len(rec.Matches) > 0 {
		event.TopMatch = rec.Matches[0].Title
	}
	api.analytics.TrackRecommendation(event)

	api.logger.Debug("Recommendation served",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("query_id", rec.QueryID),
		zap.Int("matches", len(rec.Matches)),
	)
	c.JSON(http.StatusOK, rec)
}

// SkillGapHandler reports missing skills for an arbitrary document.
// Request Body: SkillGapRequest
func (api *API) SkillGapHandler(c *gin.Context) {
	var req SkillGapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if result := ValidateSkillGapRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	c.JSON(http.StatusOK, SkillGapResponse{
		MissingSkills: api.engine.SkillGap(req.UserSkills, req.DocumentText),
	})
}
