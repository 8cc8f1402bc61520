package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// GenerationKey returns the cache key for a generated question awaiting download
func (r *CacheKeyStruct) GenerationKey(generationID string) string {
	return fmt.Sprintf("generation:%s", generationID)
}

// AudioAnalysisKey returns the cache key for the rhythm analysis of an audio file, by content hash
func (r *CacheKeyStruct) AudioAnalysisKey(sha string) string {
	return fmt.Sprintf("analysis:audio:%s", sha)
}

// ScoreAnalysisKey returns the cache key for the key analysis of a score file, by content hash
func (r *CacheKeyStruct) ScoreAnalysisKey(sha string) string {
	return fmt.Sprintf("analysis:score:%s", sha)
}

var CacheKey = NewCacheKeyStruct()

// RateLimitPrefix returns the key prefix for a rate limit scope; the limiter
// appends the client and window
func (r *CacheKeyStruct) RateLimitPrefix(scope string) string {
	return fmt.Sprintf("ratelimit:%s", scope)
}
