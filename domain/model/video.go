package model

import "time"

// Thumbnail is a single preview image variant
type Thumbnail struct {
	URL    string `json:"url" bson:"url"`
	Width  int64  `json:"width,omitempty" bson:"width,omitempty"`
	Height int64  `json:"height,omitempty" bson:"height,omitempty"`
}

// Thumbnails holds the preview variants returned by the video source
type Thumbnails struct {
	Default *Thumbnail `json:"default,omitempty" bson:"default,omitempty"`
	Medium  *Thumbnail `json:"medium,omitempty" bson:"medium,omitempty"`
	High    *Thumbnail `json:"high,omitempty" bson:"high,omitempty"`
}

// Video is a stored video record, unique by VideoID.
// Detail fields are pointers: nil means the detail lookup did not return them.
type Video struct {
	VideoID      string     `json:"videoId" bson:"videoId"`
	Title        string     `json:"title" bson:"title"`
	Description  string     `json:"description" bson:"description"`
	PublishedAt  time.Time  `json:"publishedAt" bson:"publishedAt"`
	Thumbnails   Thumbnails `json:"thumbnails" bson:"thumbnails"`
	ChannelID    string     `json:"channelId" bson:"channelId"`
	ChannelTitle string     `json:"channelTitle" bson:"channelTitle"`
	Duration     *string    `json:"duration" bson:"duration,omitempty"`
	ViewCount    *string    `json:"viewCount" bson:"viewCount,omitempty"`
	LikeCount    *string    `json:"likeCount" bson:"likeCount,omitempty"`
	Tags         []string   `json:"tags" bson:"tags"`
	CategoryID   *string    `json:"categoryId" bson:"categoryId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (v Video) Clone() Video {
	out := v
	out.Tags = append([]string{}, v.Tags...)
	out.Thumbnails = Thumbnails{
		Default: cloneThumbnail(v.Thumbnails.Default),
		Medium:  cloneThumbnail(v.Thumbnails.Medium),
		High:    cloneThumbnail(v.Thumbnails.High),
	}
	out.Duration = cloneString(v.Duration)
	out.ViewCount = cloneString(v.ViewCount)
	out.LikeCount = cloneString(v.LikeCount)
	out.CategoryID = cloneString(v.CategoryID)
	return out
}

func cloneThumbnail(t *Thumbnail) *Thumbnail {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// VideoSummary is the short form used for latest/oldest entries in stats.
type VideoSummary struct {
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"publishedAt"`
}
