package dto

import (
	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
)

// ChannelStat ranks a channel by number of stored videos
type ChannelStat struct {
	ChannelTitle string `json:"channelTitle"`
	VideoCount   int64  `json:"videoCount"`
	TotalViews   int64  `json:"totalViews"`
	AvgViews     int64  `json:"avgViews"`
}

// DailyStat is the number of videos published on one UTC day (YYYY-MM-DD)
type DailyStat struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// KeywordStat is a title/description token and its frequency
type KeywordStat struct {
	Keyword string `json:"keyword"`
	Count   int64  `json:"count"`
}

// OverviewStats aggregates the whole store
type OverviewStats struct {
	TotalVideos          int64               `json:"totalVideos"`
	UniqueChannels       int64               `json:"uniqueChannels"`
	AvgDescriptionLength int64               `json:"avgDescriptionLength"`
	AvgViewCount         int64               `json:"avgViewCount"`
	AvgLikeCount         int64               `json:"avgLikeCount"`
	LatestVideo          *model.VideoSummary `json:"latestVideo"`
	OldestVideo          *model.VideoSummary `json:"oldestVideo"`
}

// VideoStats is the data payload of GET /api/videos/stats
type VideoStats struct {
	OverviewStats
	SearchQuery      string                `json:"searchQuery"`
	TopChannels      []ChannelStat         `json:"topChannels"`
	DailyTrends      []DailyStat           `json:"dailyTrends"`
	TrendingKeywords []KeywordStat         `json:"trendingKeywords"`
	CacheStats       repository.CacheStats `json:"cacheStats"`
}
