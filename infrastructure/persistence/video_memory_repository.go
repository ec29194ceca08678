package persistence

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/utils"
)

// VideoMemoryRepository keeps videos in process memory. Reads return copies.
type VideoMemoryRepository struct {
	mu     sync.RWMutex
	videos map[string]model.Video
}

func NewVideoMemoryRepository() *VideoMemoryRepository {
	return &VideoMemoryRepository{videos: make(map[string]model.Video)}
}

func (r *VideoMemoryRepository) UpsertMany(ctx context.Context, videos []model.Video) (repository.UpsertResult, error) {
	var res repository.UpsertResult
	if len(videos) == 0 {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	now := utils.GetCurrentTime()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range videos {
		rec := v.Clone()
		if rec.Tags == nil {
			rec.Tags = []string{}
		}
		rec.UpdatedAt = now
		if existing, ok := r.videos[rec.VideoID]; ok {
			rec.CreatedAt = existing.CreatedAt
			res.Modified++
		} else {
			rec.CreatedAt = now
			res.Inserted++
		}
		r.videos[rec.VideoID] = rec
	}
	return res, nil
}

func (r *VideoMemoryRepository) Find(ctx context.Context, query model.VideoQuery) ([]model.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = query.Normalize()

	r.mu.RLock()
	matched := make([]model.Video, 0, len(r.videos))
	for _, v := range r.videos {
		if matchesFilter(v, query.Filter) {
			matched = append(matched, v)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.Video) int {
		c := compareVideos(a, b, query.SortBy)
		if query.SortOrder == model.SortDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.VideoID, b.VideoID)
	})

	start := min(max(query.Skip, 0), int64(len(matched)))
	end := int64(len(matched))
	if query.Limit > 0 {
		end = min(start+query.Limit, end)
	}

	out := make([]model.Video, 0, end-start)
	for _, v := range matched[start:end] {
		out = append(out, v.Clone())
	}
	return out, nil
}

func (r *VideoMemoryRepository) Count(ctx context.Context, filter model.VideoFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, v := range r.videos {
		if matchesFilter(v, filter) {
			n++
		}
	}
	return n, nil
}

func (r *VideoMemoryRepository) FindByID(ctx context.Context, videoID string) (*model.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.videos[videoID]
	if !ok {
		return nil, repository.ErrVideoNotFound
	}
	c := v.Clone()
	return &c, nil
}

func matchesFilter(v model.Video, f model.VideoFilter) bool {
	if f.Channel != "" && !utils.ContainsFold(v.ChannelTitle, f.Channel) {
		return false
	}
	if f.DateFrom != nil && v.PublishedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && v.PublishedAt.After(*f.DateTo) {
		return false
	}
	return utils.MatchesAllTerms(f.SearchTerms, v.Title, v.Description)
}

// compareVideos orders ascending by field. Unset or non-numeric counts sort before numbers.
func compareVideos(a, b model.Video, sortBy string) int {
	switch sortBy {
	case model.SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case model.SortByViewCount:
		return compareCounts(a.ViewCount, b.ViewCount)
	case model.SortByLikeCount:
		return compareCounts(a.LikeCount, b.LikeCount)
	default:
		return a.PublishedAt.Compare(b.PublishedAt)
	}
}

func compareCounts(a, b *string) int {
	av, aok := utils.ParseCount(a)
	bv, bok := utils.ParseCount(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return cmp.Compare(av, bv)
}
