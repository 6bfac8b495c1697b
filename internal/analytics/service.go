// Package analytics aggregates served recommendations into an in-memory dashboard.
package analytics

import (
	"sort"
	"sync"
	"time"

	"github.com/gcbaptista/go-skillmatch/internal/engine"
	"github.com/gcbaptista/go-skillmatch/model"
)

const (
	maxEventsToKeep = 10000 // Keep last 10k events for performance
	popularLimit    = 5
)

// CorpusReporter reports on the active corpus.
type CorpusReporter interface {
	Stats() (engine.CorpusStats, error)
}

// Service implements analytics tracking and reporting. Events live in memory
// only and are lost on restart.
type Service struct {
	mutex  sync.RWMutex
	events []model.RecommendationEvent
	corpus CorpusReporter
	now    func() time.Time
}

// NewService creates a new analytics service
func NewService(corpus CorpusReporter) *Service {
	return &Service{
		events: make([]model.RecommendationEvent, 0),
		corpus: corpus,
		now:    time.Now,
	}
}

// TrackRecommendation records a served recommendation. A zero Timestamp is set to now.
func (s *Service) TrackRecommendation(event model.RecommendationEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.events = append(s.events, event)

	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
}

// EventCount returns the number of events held.
func (s *Service) EventCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.events)
}

// GetDashboardData returns complete analytics dashboard data
func (s *Service) GetDashboardData() model.AnalyticsDashboard {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.now()
	yesterday := now.Add(-24 * time.Hour)

	last24h := filterEventsByTimeRange(s.events, yesterday, now.Add(time.Nanosecond))
	previous24h := filterEventsByTimeRange(s.events, yesterday.Add(-24*time.Hour), yesterday)

	dashboard := model.AnalyticsDashboard{
		TotalRecommendations:     len(last24h),
		ChangePercent:            calculateChangePercent(len(last24h), len(previous24h)),
		AvgResponseTime:          calculateAvgResponseTime(last24h),
		ResponseTimeChange:       calculateResponseTimeChange(last24h, previous24h),
		NoMatchRate:              rate(last24h, func(e model.RecommendationEvent) bool { return e.NoMatch }),
		FilteredRate:             rate(last24h, func(e model.RecommendationEvent) bool { return e.Filtered }),
		Performance24h:           getHourlyPerformance(last24h),
		PopularSkills:            popular(last24h, func(e model.RecommendationEvent) []string { return e.Skills }),
		TopMatchedTitles:         popular(last24h, func(e model.RecommendationEvent) []string { return nonEmpty(e.TopMatch) }),
		ResponseTimeDistribution: getResponseTimeDistribution(last24h),
	}

	if s.corpus != nil {
		if stats, err := s.corpus.Stats(); err == nil {
			dashboard.ActivePostings = stats.Postings
		}
	}

	return dashboard
}

// filterEventsByTimeRange returns events in [start, end)
func filterEventsByTimeRange(events []model.RecommendationEvent, start, end time.Time) []model.RecommendationEvent {
	var filtered []model.RecommendationEvent
	for _, event := range events {
		if !event.Timestamp.Before(start) && event.Timestamp.Before(end) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateChangePercent calculates percentage change between current and previous values
func calculateChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100.0
}

// calculateAvgResponseTime calculates average response time for events in milliseconds
func calculateAvgResponseTime(events []model.RecommendationEvent) int64 {
	if len(events) == 0 {
		return 0
	}

	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return (total / time.Duration(len(events))).Milliseconds()
}

// calculateResponseTimeChange calculates response time change trend
func calculateResponseTimeChange(current, previous []model.RecommendationEvent) string {
	currentAvg := calculateAvgResponseTime(current)
	previousAvg := calculateAvgResponseTime(previous)

	if previousAvg == 0 {
		return "stable"
	}

	change := float64(currentAvg-previousAvg) / float64(previousAvg)
	if change > 0.1 {
		return "up"
	} else if change < -0.1 {
		return "down"
	}
	return "stable"
}

func rate(events []model.RecommendationEvent, pred func(model.RecommendationEvent) bool) float64 {
	if len(events) == 0 {
		return 0
	}
	n := 0
	for _, event := range events {
		if pred(event) {
			n++
		}
	}
	return float64(n) / float64(len(events))
}

// getHourlyPerformance returns per-hour request counts, hour 0 through 23
func getHourlyPerformance(events []model.RecommendationEvent) []model.RecommendationPerformanceHourly {
	hourlyData := make(map[int][]model.RecommendationEvent)
	for _, event := range events {
		hour := event.Timestamp.Hour()
		hourlyData[hour] = append(hourlyData[hour], event)
	}

	performance := make([]model.RecommendationPerformanceHourly, 0, 24)
	for hour := 0; hour < 24; hour++ {
		performance = append(performance, model.RecommendationPerformanceHourly{
			Hour:            hour,
			RequestCount:    len(hourlyData[hour]),
			AvgResponseTime: calculateAvgResponseTime(hourlyData[hour]),
		})
	}
	return performance
}

// popular counts the terms extracted from each event and returns the most
// frequent ones; equal counts are ordered alphabetically.
func popular(events []model.RecommendationEvent, terms func(model.RecommendationEvent) []string) []model.PopularTerm {
	counts := make(map[string]int)
	for _, event := range events {
		for _, term := range terms(event) {
			counts[term]++
		}
	}

	result := make([]model.PopularTerm, 0, len(counts))
	for term, count := range counts {
		result = append(result, model.PopularTerm{Term: term, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Term < result[j].Term
	})

	if len(result) > popularLimit {
		result = result[:popularLimit]
	}
	return result
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// getResponseTimeDistribution returns response time distribution
func getResponseTimeDistribution(events []model.RecommendationEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)

	if total == 0 {
		return dist
	}

	for _, event := range events {
		ms := event.ResponseTime.Milliseconds()
		switch {
		case ms <= 25:
			dist.Bucket0To25ms++
		case ms <= 50:
			dist.Bucket25To50ms++
		case ms <= 100:
			dist.Bucket50To100ms++
		default:
			dist.Bucket100msPlus++
		}
	}

	dist.Percentage0To25 = float64(dist.Bucket0To25ms) / float64(total) * 100
	dist.Percentage25To50 = float64(dist.Bucket25To50ms) / float64(total) * 100
	dist.Percentage50To100 = float64(dist.Bucket50To100ms) / float64(total) * 100
	dist.Percentage100Plus = float64(dist.Bucket100msPlus) / float64(total) * 100

	return dist
}
