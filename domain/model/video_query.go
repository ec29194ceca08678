package model

import "time"

// Sortable fields
const (
	SortByPublishedAt = "publishedAt"
	SortByTitle       = "title"
	SortByViewCount   = "viewCount"
	SortByLikeCount   = "likeCount"
)

// Sort orders
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortFields lists every field a caller may sort by.
var SortFields = []string{SortByPublishedAt, SortByTitle, SortByViewCount, SortByLikeCount}

// VideoFilter selects a subset of stored videos.
// Channel is a case-insensitive substring of channelTitle. Date bounds are inclusive.
// Every entry of SearchTerms must occur in the title or the description.
type VideoFilter struct {
	Channel     string
	DateFrom    *time.Time
	DateTo      *time.Time
	SearchTerms []string
}

// VideoQuery is a filtered, sorted, paged read. Limit 0 means no limit.
type VideoQuery struct {
	Filter    VideoFilter
	SortBy    string
	SortOrder string
	Skip      int64
	Limit     int64
}

// Normalize fills in default sort settings.
func (q VideoQuery) Normalize() VideoQuery {
	switch q.SortBy {
	case SortByPublishedAt, SortByTitle, SortByViewCount, SortByLikeCount:
	default:
		q.SortBy = SortByPublishedAt
	}
	if q.SortOrder != SortAsc {
		q.SortOrder = SortDesc
	}
	return q
}
