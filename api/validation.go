// Package api provides validation utilities for API request handling.
package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-skillmatch/internal/engine"
)

// Request limits
const (
	MaxTopK          = 100
	MaxSkills        = 100
	MaxSkillLength   = 100
	MaxTextLength    = 10_000
	MaxDocumentBytes = 100_000
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateRecommendRequest checks request bounds. Whether the request carries
// anything to rank against is decided by the engine.
func ValidateRecommendRequest(req *engine.RecommendRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if req.TopK < 0 {
		result.AddError("top_k", "top_k must not be negative")
	} else if req.TopK > MaxTopK {
		result.AddError("top_k", fmt.Sprintf("top_k must not exceed %d", MaxTopK))
	}

	if req.MinSkillOverlap != nil && *req.MinSkillOverlap < 0 {
		result.AddError("min_skill_overlap", "min_skill_overlap must not be negative")
	}

	validateSkills(result, "skills", req.Skills)
	if req.Resume != nil {
		validateSkills(result, "resume.skills", req.Resume.Skills)
	}

	for field, value := range map[string]string{
		"interests":  req.Interests,
		"experience": req.Experience,
		"location":   req.Location,
		"job_type":   req.JobType,
		"sector":     req.Sector,
	} {
		if len(value) > MaxTextLength {
			result.AddError(field, fmt.Sprintf("%s must not exceed %d characters", field, MaxTextLength))
		}
	}

	return result
}

// ValidateSkillGapRequest validates a skill-gap request
func ValidateSkillGapRequest(req *SkillGapRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(req.DocumentText) == "" {
		result.AddError("document_text", "document_text is required")
	} else if len(req.DocumentText) > MaxDocumentBytes {
		result.AddError("document_text", fmt.Sprintf("document_text must not exceed %d bytes", MaxDocumentBytes))
	}
	validateSkills(result, "user_skills", req.UserSkills)

	return result
}

func validateSkills(result *ValidationResult, field string, skills []string) {
	if len(skills) > MaxSkills {
		result.AddError(field, fmt.Sprintf("at most %d skills are allowed", MaxSkills))
		return
	}
	for i, skill := range skills {
		if len(skill) > MaxSkillLength {
			result.AddError(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("skill must not exceed %d characters", MaxSkillLength))
		}
	}
}

// ValidateJobID validates a job ID path parameter
func ValidateJobID(jobID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if jobID == "" {
		result.AddError("jobId", "Job ID is required")
		return result
	}

	if strings.TrimSpace(jobID) != jobID {
		result.AddError("jobId", "Job ID cannot have leading or trailing whitespace")
	}

	return result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}
