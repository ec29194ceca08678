package model

import "time"

// SearchItem is a candidate returned by a query search against the video source
type SearchItem struct {
	VideoID      string
	Title        string
	Description  string
	PublishedAt  time.Time
	ChannelID    string
	ChannelTitle string
	Thumbnails   Thumbnails
}

// VideoDetail carries the per-video fields only available from a detail lookup
type VideoDetail struct {
	VideoID    string
	Duration   *string
	ViewCount  *string
	LikeCount  *string
	Tags       []string
	CategoryID *string
}
