package usecase

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"video-fetcher/domain/dto"
	"video-fetcher/domain/model"
	"video-fetcher/infrastructure/utils"
)

const (
	minKeywordLength = 3
	dailyTrendLayout = time.DateOnly
)

// VideoAnalytics derives aggregate statistics from a set of stored videos.
type VideoAnalytics struct {
	stopWords        map[string]struct{}
	trendingLimit    int
	topChannelsLimit int
	trendDays        int
}

func NewVideoAnalytics(stopWords []string, trendingLimit, topChannelsLimit, trendDays int) *VideoAnalytics {
	sw := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		sw[strings.ToLower(w)] = struct{}{}
	}
	return &VideoAnalytics{
		stopWords:        sw,
		trendingLimit:    trendingLimit,
		topChannelsLimit: topChannelsLimit,
		trendDays:        trendDays,
	}
}

// NewAccumulator starts an empty aggregation. Feed it with Add and read the results at the end.
func (a *VideoAnalytics) NewAccumulator() *StatsAccumulator {
	return &StatsAccumulator{
		analytics: a,
		channels:  make(map[string]struct{}),
		byChannel: make(map[string]*channelAcc),
		byDay:     make(map[string]int64),
		keywords:  make(map[string]int64),
	}
}

// Overview computes store-wide totals and averages. Non-numeric counts are left out of the averages.
func (a *VideoAnalytics) Overview(videos []model.Video) dto.OverviewStats {
	return a.accumulate(videos).Overview()
}

// TopChannels ranks channel titles by number of videos, ties broken by title.
func (a *VideoAnalytics) TopChannels(videos []model.Video) []dto.ChannelStat {
	return a.accumulate(videos).TopChannels()
}

// DailyUploadTrends counts videos per UTC publish day, most recent day first.
func (a *VideoAnalytics) DailyUploadTrends(videos []model.Video) []dto.DailyStat {
	return a.accumulate(videos).DailyUploadTrends()
}

// TrendingKeywords counts alphabetic title and description tokens that are not stop words.
func (a *VideoAnalytics) TrendingKeywords(videos []model.Video) []dto.KeywordStat {
	return a.accumulate(videos).TrendingKeywords()
}

func (a *VideoAnalytics) accumulate(videos []model.Video) *StatsAccumulator {
	acc := a.NewAccumulator()
	acc.Add(videos...)
	return acc
}

type channelAcc struct {
	count int64
	views mean
}

// StatsAccumulator keeps running aggregates so statistics can be built one batch at a time.
type StatsAccumulator struct {
	analytics *VideoAnalytics

	total     int64
	channels  map[string]struct{}
	descTotal int64
	views     mean
	likes     mean
	latest    *model.VideoSummary
	oldest    *model.VideoSummary

	byChannel map[string]*channelAcc
	byDay     map[string]int64
	keywords  map[string]int64
}

func (s *StatsAccumulator) Add(videos ...model.Video) {
	for i := range videos {
		v := &videos[i]
		s.total++
		s.channels[v.ChannelID] = struct{}{}
		s.descTotal += int64(utf8.RuneCountInString(v.Description))
		views, hasViews := utils.ParseCount(v.ViewCount)
		if hasViews {
			s.views.add(views)
		}
		if n, ok := utils.ParseCount(v.LikeCount); ok {
			s.likes.add(n)
		}
		if s.latest == nil || v.PublishedAt.After(s.latest.PublishedAt) {
			s.latest = &model.VideoSummary{Title: v.Title, PublishedAt: v.PublishedAt}
		}
		if s.oldest == nil || v.PublishedAt.Before(s.oldest.PublishedAt) {
			s.oldest = &model.VideoSummary{Title: v.Title, PublishedAt: v.PublishedAt}
		}

		c, ok := s.byChannel[v.ChannelTitle]
		if !ok {
			c = &channelAcc{}
			s.byChannel[v.ChannelTitle] = c
		}
		c.count++
		if hasViews {
			c.views.add(views)
		}

		s.byDay[v.PublishedAt.UTC().Format(dailyTrendLayout)]++

		for _, word := range strings.Fields(strings.ToLower(v.Title + " " + v.Description)) {
			if !isKeyword(word) {
				continue
			}
			if _, stop := s.analytics.stopWords[word]; stop {
				continue
			}
			s.keywords[word]++
		}
	}
}

func (s *StatsAccumulator) Overview() dto.OverviewStats {
	out := dto.OverviewStats{TotalVideos: s.total}
	if s.total == 0 {
		return out
	}
	out.UniqueChannels = int64(len(s.channels))
	out.AvgDescriptionLength = int64(math.Round(float64(s.descTotal) / float64(s.total)))
	out.AvgViewCount = s.views.rounded()
	out.AvgLikeCount = s.likes.rounded()
	latest, oldest := *s.latest, *s.oldest
	out.LatestVideo = &latest
	out.OldestVideo = &oldest
	return out
}

func (s *StatsAccumulator) TopChannels() []dto.ChannelStat {
	out := make([]dto.ChannelStat, 0, len(s.byChannel))
	for title, c := range s.byChannel {
		out = append(out, dto.ChannelStat{
			ChannelTitle: title,
			VideoCount:   c.count,
			TotalViews:   c.views.sum,
			AvgViews:     c.views.rounded(),
		})
	}
	slices.SortFunc(out, func(x, y dto.ChannelStat) int {
		if c := cmp.Compare(y.VideoCount, x.VideoCount); c != 0 {
			return c
		}
		return cmp.Compare(x.ChannelTitle, y.ChannelTitle)
	})
	return truncate(out, s.analytics.topChannelsLimit)
}

func (s *StatsAccumulator) DailyUploadTrends() []dto.DailyStat {
	out := make([]dto.DailyStat, 0, len(s.byDay))
	for day, n := range s.byDay {
		out = append(out, dto.DailyStat{Date: day, Count: n})
	}
	// YYYY-MM-DD sorts chronologically as text
	slices.SortFunc(out, func(x, y dto.DailyStat) int { return cmp.Compare(y.Date, x.Date) })
	return truncate(out, s.analytics.trendDays)
}

func (s *StatsAccumulator) TrendingKeywords() []dto.KeywordStat {
	out := make([]dto.KeywordStat, 0, len(s.keywords))
	for word, n := range s.keywords {
		out = append(out, dto.KeywordStat{Keyword: word, Count: n})
	}
	slices.SortFunc(out, func(x, y dto.KeywordStat) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Keyword, y.Keyword)
	})
	return truncate(out, s.analytics.trendingLimit)
}

// isKeyword matches ^[a-z]{3,}$
func isKeyword(word string) bool {
	if len(word) < minKeywordLength {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	return true
}

type mean struct {
	sum int64
	n   int64
}

func (m *mean) add(v int64) {
	m.sum += v
	m.n++
}

func (m mean) rounded() int64 {
	if m.n == 0 {
		return 0
	}
	return int64(math.Round(float64(m.sum) / float64(m.n)))
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
