package model

import "time"

// RecommendationEvent records one served recommendation for analytics. It keeps
// the requested skills and the top match title, never the ranked list itself.
type RecommendationEvent struct {
	QueryID      string        `json:"query_id"`
	Skills       []string      `json:"skills"`
	Filtered     bool          `json:"filtered"`
	MatchCount   int           `json:"match_count"`
	NoMatch      bool          `json:"no_match"`
	TopMatch     string        `json:"top_match,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularTerm is a skill or job title with how often it appeared
type PopularTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To25ms     int     `json:"bucket_0_25ms"`
	Bucket25To50ms    int     `json:"bucket_25_50ms"`
	Bucket50To100ms   int     `json:"bucket_50_100ms"`
	Bucket100msPlus   int     `json:"bucket_100ms_plus"`
	Percentage0To25   float64 `json:"percentage_0_25"`
	Percentage25To50  float64 `json:"percentage_25_50"`
	Percentage50To100 float64 `json:"percentage_50_100"`
	Percentage100Plus float64 `json:"percentage_100_plus"`
}

// RecommendationPerformanceHourly represents hourly request counts and latency
type RecommendationPerformanceHourly struct {
	Hour            int   `json:"hour"`
	RequestCount    int   `json:"request_count"`
	AvgResponseTime int64 `json:"avg_response_time"` // in milliseconds
}

// AnalyticsDashboard represents the complete analytics dashboard data
type AnalyticsDashboard struct {
	// Summary metrics, last 24 hours
	TotalRecommendations int     `json:"total_recommendations"`
	ChangePercent        float64 `json:"change_percent"` // against the 24 hours before
	AvgResponseTime      int64   `json:"avg_response_time"`
	ResponseTimeChange   string  `json:"response_time_change"`
	NoMatchRate          float64 `json:"no_match_rate"`
	FilteredRate         float64 `json:"filtered_rate"`
	ActivePostings       int     `json:"active_postings"`

	// Detailed analytics
	Performance24h           []RecommendationPerformanceHourly `json:"performance_24h"`
	PopularSkills            []PopularTerm                     `json:"popular_skills"`
	TopMatchedTitles         []PopularTerm                     `json:"top_matched_titles"`
	ResponseTimeDistribution ResponseTimeDistribution          `json:"response_time_distribution"`
}
