package configuration

import (
	"strings"

	"video-fetcher/infrastructure/logger"
)

// DefaultStopWords are dropped from trending keyword counts
var DefaultStopWords = []string{
	"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
	"a", "an", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did", "will", "would", "could", "should",
}

func initYouTube(C *Config) {
	// YOUTUBE_API_KEYS is a comma separated pool; YOUTUBE_API_KEY is accepted for a single key.
	if v := getEnv("YOUTUBE_API_KEYS", getEnv("YOUTUBE_API_KEY", "")); v != "" {
		C.YouTube.APIKeys = splitList(v)
	} else {
		C.YouTube.APIKeys = splitList(strings.Join(C.YouTube.APIKeys, ","))
	}
	C.YouTube.SearchQuery = getConfigValue(C.YouTube.SearchQuery, "SEARCH_QUERY", "cricket")
	C.YouTube.Endpoint = getConfigValue(C.YouTube.Endpoint, "YOUTUBE_API_ENDPOINT", "")
	envInt("MAX_RESULTS_PER_REQUEST", &C.YouTube.MaxResults)
	envInt("FETCH_INTERVAL", &C.YouTube.FetchIntervalSeconds)
	envInt("YOUTUBE_REQUEST_TIMEOUT", &C.YouTube.RequestTimeoutSeconds)
	defaultInt(&C.YouTube.MaxResults, 50)
	// the search endpoint caps a page at 50 results
	if C.YouTube.MaxResults > 50 {
		C.YouTube.MaxResults = 50
	}
	defaultInt(&C.YouTube.FetchIntervalSeconds, 10)
	defaultInt(&C.YouTube.RequestTimeoutSeconds, 15)

	logger.GetLogger().WithFields(map[string]interface{}{
		"apiKeys":       len(C.YouTube.APIKeys),
		"searchQuery":   C.YouTube.SearchQuery,
		"maxResults":    C.YouTube.MaxResults,
		"fetchInterval": C.YouTube.FetchIntervalSeconds,
	}).Info("Loaded YouTube configuration state")
}

func initAnalytics(C *Config) {
	if v := getEnv("ANALYTICS_STOP_WORDS", ""); v != "" {
		C.Analytics.StopWords = splitList(v)
	}
	if len(C.Analytics.StopWords) == 0 {
		C.Analytics.StopWords = append([]string{}, DefaultStopWords...)
	}
	for i, w := range C.Analytics.StopWords {
		C.Analytics.StopWords[i] = strings.ToLower(w)
	}
	defaultInt(&C.Analytics.TrendingLimit, 10)
	defaultInt(&C.Analytics.TopChannelsLimit, 10)
	defaultInt(&C.Analytics.TrendDays, 7)
	envInt("STATS_BATCH_SIZE", &C.Analytics.BatchSize)
	defaultInt(&C.Analytics.BatchSize, 500)
}
