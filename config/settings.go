// Package config provides configuration structures for the recommender.
// It defines the dataset location, ranking options, skill vocabulary and the
// settings of the HTTP server and its supporting stores.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDataPath    = "SKILLMATCH_DATA_PATH"
	EnvPort        = "SKILLMATCH_PORT"
	EnvRedisURL    = "SKILLMATCH_REDIS_URL"
	EnvSnapshotDir = "SKILLMATCH_SNAPSHOT_DIR"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultTopK                    = 5
	DefaultDescriptionPreviewChars = 500
	DefaultParallelThreshold       = 2000
	DefaultPort                    = 8080
	DefaultMaxBodyBytes            = 1 << 20
	DefaultRedisTTL                = 24 * time.Hour
	DefaultJobWorkers              = 2
)

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Port         int   `json:"port" yaml:"port"`
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`
}

// SnapshotSettings configures the on-disk model snapshot store. An empty Dir disables it.
type SnapshotSettings struct {
	Dir string `json:"dir" yaml:"dir"`
}

// RedisSettings configures the Redis model snapshot store. An empty URL disables it.
type RedisSettings struct {
	URL string        `json:"url" yaml:"url"`
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// LogSettings configures the zap logger.
type LogSettings struct {
	Development bool `json:"development" yaml:"development"`
}

// JobSettings configures the background job manager.
type JobSettings struct {
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`
}

// Settings contains every configuration option of the recommender.
type Settings struct {
	DataPath                string   `json:"data_path" yaml:"data_path"`                                 // CSV dataset of job postings
	DefaultTopK             int      `json:"default_top_k" yaml:"default_top_k"`                         // Matches returned when a request does not ask for a count
	DescriptionPreviewChars int      `json:"description_preview_chars" yaml:"description_preview_chars"` // Description length shown per match
	SkillVocabulary         []string `json:"skill_vocabulary" yaml:"skill_vocabulary"`                   // Skills considered by the skill-gap detector
	ExtraStopWords          []string `json:"extra_stop_words" yaml:"extra_stop_words"`                   // Removed in addition to the English stop words
	MinSkillOverlap         int      `json:"min_skill_overlap" yaml:"min_skill_overlap"`                 // Default skill-overlap filter; 0 disables it
	ParallelThreshold       int      `json:"parallel_threshold" yaml:"parallel_threshold"`               // Candidate count above which scoring runs in parallel
	MaxWorkers              int      `json:"max_workers" yaml:"max_workers"`                             // Scoring workers; defaults to GOMAXPROCS

	Server   ServerSettings   `json:"server" yaml:"server"`
	Snapshot SnapshotSettings `json:"snapshot" yaml:"snapshot"`
	Redis    RedisSettings    `json:"redis" yaml:"redis"`
	Log      LogSettings      `json:"log" yaml:"log"`
	Jobs     JobSettings      `json:"jobs" yaml:"jobs"`
}

// Load reads settings from a YAML file, then applies .env and environment
// overrides and finally the defaults. An empty path skips the file.
func Load(path string) (*Settings, error) {
	settings := &Settings{}

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// a missing .env file is not an error
	_ = godotenv.Load()

	if err := settings.mergeWithEnv(); err != nil {
		return nil, err
	}
	settings.ApplyDefaults()

	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return settings, nil
}

func (settings *Settings) mergeWithEnv() error {
	if v := os.Getenv(EnvDataPath); v != "" {
		settings.DataPath = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		settings.Server.Port = port
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		settings.Redis.URL = v
	}
	if v := os.Getenv(EnvSnapshotDir); v != "" {
		settings.Snapshot.Dir = v
	}
	return nil
}

// ApplyDefaults applies default values to the settings
func (settings *Settings) ApplyDefaults() {
	if settings.DefaultTopK <= 0 {
		settings.DefaultTopK = DefaultTopK
	}
	if settings.DescriptionPreviewChars <= 0 {
		settings.DescriptionPreviewChars = DefaultDescriptionPreviewChars
	}
	if settings.ParallelThreshold <= 0 {
		settings.ParallelThreshold = DefaultParallelThreshold
	}
	if settings.MaxWorkers <= 0 {
		settings.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	if settings.Server.Port == 0 {
		settings.Server.Port = DefaultPort
	}
	if settings.Server.MaxBodyBytes <= 0 {
		settings.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if settings.Redis.TTL <= 0 {
		settings.Redis.TTL = DefaultRedisTTL
	}
	if settings.Jobs.MaxWorkers <= 0 {
		settings.Jobs.MaxWorkers = DefaultJobWorkers
	}

	// Initialize empty slices if nil to prevent nil pointer issues
	if len(settings.SkillVocabulary) == 0 {
		settings.SkillVocabulary = DefaultSkillVocabulary()
	}
	if settings.ExtraStopWords == nil {
		settings.ExtraStopWords = []string{}
	}
}

// Validate returns a message for every invalid setting.
func (settings *Settings) Validate() []string {
	var problems []string

	if settings.Server.Port < 1 || settings.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", settings.Server.Port))
	}
	if settings.MinSkillOverlap < 0 {
		problems = append(problems, "min_skill_overlap cannot be negative")
	}
	problems = append(problems, checkDuplicates("skill_vocabulary", settings.SkillVocabulary)...)

	for _, skill := range settings.SkillVocabulary {
		if strings.TrimSpace(skill) == "" {
			problems = append(problems, "Skill cannot be empty or whitespace-only")
		}
	}

	return problems
}

// checkDuplicates checks for case-insensitive duplicate values in a slice and returns error messages
func checkDuplicates(fieldName string, values []string) []string {
	var errors []string
	seen := make(map[string]bool)

	for _, value := range values {
		key := strings.ToLower(strings.TrimSpace(value))
		if seen[key] {
			errors = append(errors, "Duplicate value '"+value+"' found in "+fieldName)
		}
		seen[key] = true
	}

	return errors
}

// Address returns the listen address of the HTTP server.
func (settings *Settings) Address() string {
	return fmt.Sprintf(":%d", settings.Server.Port)
}
