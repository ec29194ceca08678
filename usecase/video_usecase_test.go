package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"video-fetcher/domain/dto"
	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/cache"
	"video-fetcher/infrastructure/persistence"
	"video-fetcher/infrastructure/utils"
	"video-fetcher/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readCfg = usecase.VideoUsecaseConfig{
	SearchQuery: "cricket",
	ListTTL:     2 * time.Minute,
	SearchTTL:   2 * time.Minute,
	StatsTTL:    5 * time.Minute,
}

var readBase = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func storedVideo(id, title, description, channel string, hours int, views *string) model.Video {
	return model.Video{
		VideoID:      id,
		Title:        title,
		Description:  description,
		ChannelID:    "id-" + channel,
		ChannelTitle: channel,
		PublishedAt:  readBase.Add(time.Duration(hours) * time.Hour),
		ViewCount:    views,
	}
}

func seedStore(t *testing.T, videos ...model.Video) *persistence.VideoMemoryRepository {
	t.Helper()
	store := persistence.NewVideoMemoryRepository()
	_, err := store.UpsertMany(context.Background(), videos)
	require.NoError(t, err)
	return store
}

func newVideoUsecase(store repository.IVideo, c repository.IResultCache) usecase.IVideoUsecase {
	return usecase.NewVideoUsecase(store, c, newAnalytics(), readCfg)
}

func videoIDs(videos []model.Video) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.VideoID)
	}
	return out
}

func TestSearchVideos_MatchesEveryTerm(t *testing.T) {
	store := seedStore(t,
		storedVideo("tea", "How to make tea", "Learn tea making", "Kitchen", 0, nil),
		storedVideo("only-tea", "Tea time", "relaxing", "Kitchen", 1, nil),
		storedVideo("other", "Cricket highlights", "how it happened", "Sports", 2, nil),
	)
	uc := newVideoUsecase(store, cache.NewResultCache(time.Minute, time.Minute))

	got, err := uc.SearchVideos(context.Background(), &dto.VideoSearchRequest{Q: "tea how", Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"tea"}, videoIDs(got.Videos))
	assert.Equal(t, "tea how", got.SearchQuery)
	assert.EqualValues(t, 1, got.Pagination.TotalVideos)
}

func TestSearchVideos_BlankQuery(t *testing.T) {
	uc := newVideoUsecase(persistence.NewVideoMemoryRepository(), nil)
	_, err := uc.SearchVideos(context.Background(), &dto.VideoSearchRequest{Q: "   ", Page: 1, Limit: 10})
	assert.ErrorIs(t, err, repository.ErrInvalidQuery)
}

func TestListVideos_PaginatesAndFilters(t *testing.T) {
	var videos []model.Video
	for i := 0; i < 23; i++ {
		videos = append(videos, storedVideo(string(rune('a'+i)), "t", "d", "Tea Masters", i, nil))
	}
	videos = append(videos, storedVideo("zz", "t", "d", "Other", 100, nil))
	uc := newVideoUsecase(seedStore(t, videos...), nil)

	got, err := uc.ListVideos(context.Background(), &dto.VideoListRequest{
		Page: 3, Limit: 10, SortBy: model.SortByPublishedAt, SortOrder: model.SortDesc, Channel: "tea",
	})
	require.NoError(t, err)

	p := got.Pagination
	assert.EqualValues(t, 3, p.TotalPages)
	assert.EqualValues(t, 23, p.TotalVideos)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
	assert.Nil(t, p.NextPage)
	require.NotNil(t, p.PrevPage)
	assert.EqualValues(t, 2, *p.PrevPage)

	// newest first: page 3 holds the three oldest
	assert.Equal(t, []string{"c", "b", "a"}, videoIDs(got.Videos))
	require.NotNil(t, got.Filters.Channel)
	assert.Equal(t, "tea", *got.Filters.Channel)
	assert.Nil(t, got.Filters.DateFrom)
	assert.Equal(t, "desc", got.Filters.SortOrder)
}

func TestListVideos_DateRangeAndCountSort(t *testing.T) {
	store := seedStore(t,
		storedVideo("a", "A", "", "X", 0, utils.StringPtr("900")),
		storedVideo("b", "B", "", "X", 24, utils.StringPtr("1000")),
		storedVideo("c", "C", "", "X", 48, nil),
		storedVideo("d", "D", "", "X", 72, utils.StringPtr("5")),
	)
	uc := newVideoUsecase(store, nil)

	got, err := uc.ListVideos(context.Background(), &dto.VideoListRequest{
		Page: 1, Limit: 10, SortBy: model.SortByViewCount, SortOrder: model.SortDesc,
		DateFrom: "2024-05-02", DateTo: "2024-05-04T12:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d", "c"}, videoIDs(got.Videos))
}

func TestListVideos_InvalidDate(t *testing.T) {
	uc := newVideoUsecase(persistence.NewVideoMemoryRepository(), nil)
	_, err := uc.ListVideos(context.Background(), &dto.VideoListRequest{Page: 1, Limit: 10, DateFrom: "yesterday"})
	assert.ErrorIs(t, err, repository.ErrInvalidQuery)
}

func TestListVideos_ServedFromCache(t *testing.T) {
	store := seedStore(t, storedVideo("a", "A", "", "X", 0, nil))
	resultCache := cache.NewResultCache(time.Minute, time.Minute)
	uc := newVideoUsecase(store, resultCache)
	req := &dto.VideoListRequest{Page: 1, Limit: 10, SortBy: model.SortByPublishedAt, SortOrder: model.SortDesc}

	first, err := uc.ListVideos(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.Videos, 1)

	_, err = store.UpsertMany(context.Background(), []model.Video{storedVideo("b", "B", "", "X", 1, nil)})
	require.NoError(t, err)

	second, err := uc.ListVideos(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, second.Videos, 1, "second call should be served from cache")

	stats := resultCache.Stats(context.Background())
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Sets)
}

func TestListVideos_RedisBackedCacheDecodes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := seedStore(t, storedVideo("a", "A", "", "X", 0, utils.StringPtr("7")))
	uc := newVideoUsecase(store, cache.NewRedisResultCache(client, "vf:", time.Minute))
	req := &dto.VideoListRequest{Page: 1, Limit: 10, SortBy: model.SortByPublishedAt, SortOrder: model.SortDesc}

	_, err := uc.ListVideos(context.Background(), req)
	require.NoError(t, err)

	got, err := uc.ListVideos(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, got.Videos, 1)
	assert.Equal(t, "7", *got.Videos[0].ViewCount)
	assert.EqualValues(t, 1, got.Pagination.TotalVideos)
}

func TestGetVideo(t *testing.T) {
	uc := newVideoUsecase(seedStore(t, storedVideo("a", "A", "", "X", 0, nil)), nil)

	v, err := uc.GetVideo(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "A", v.Title)

	_, err = uc.GetVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrVideoNotFound)
}

func TestGetStats(t *testing.T) {
	store := seedStore(t,
		storedVideo("a", "Tea tea", "", "Kitchen", 0, utils.StringPtr("10")),
		storedVideo("b", "Cricket", "", "Sports", 30, utils.StringPtr("30")),
	)
	resultCache := cache.NewResultCache(time.Minute, time.Minute)
	uc := newVideoUsecase(store, resultCache)

	stats, err := uc.GetStats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalVideos)
	assert.EqualValues(t, 2, stats.UniqueChannels)
	assert.EqualValues(t, 20, stats.AvgViewCount)
	assert.Equal(t, "cricket", stats.SearchQuery)
	require.NotNil(t, stats.LatestVideo)
	assert.Equal(t, "Cricket", stats.LatestVideo.Title)
	assert.Len(t, stats.DailyTrends, 2)
	assert.Equal(t, dto.KeywordStat{Keyword: "tea", Count: 2}, stats.TrendingKeywords[0])
	assert.EqualValues(t, 1, stats.CacheStats.Misses)
	assert.EqualValues(t, 1, stats.CacheStats.Sets)

	again, err := uc.GetStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, again.CacheStats.Hits, "cache counters are read fresh")
	assert.Contains(t, again.CacheStats.Keys, usecase.CacheKeyStats)
}

func TestGetStats_ConcurrentCallers(t *testing.T) {
	store := seedStore(t, storedVideo("a", "A", "", "X", 0, nil))
	uc := newVideoUsecase(store, cache.NewResultCache(time.Minute, time.Minute))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, err := uc.GetStats(context.Background())
			assert.NoError(t, err)
			assert.EqualValues(t, 1, stats.TotalVideos)
		}()
	}
	wg.Wait()
}

// blockingStore holds the first Find until release is closed.
type blockingStore struct {
	repository.IVideo
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) Find(ctx context.Context, query model.VideoQuery) ([]model.Video, error) {
	s.once.Do(func() { close(s.entered) })
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.IVideo.Find(ctx, query)
}

func TestGetStats_CancelledCallerDoesNotFailSharedComputation(t *testing.T) {
	store := &blockingStore{
		IVideo:  seedStore(t, storedVideo("a", "A", "", "X", 0, nil)),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	uc := newVideoUsecase(store, cache.NewResultCache(time.Minute, time.Minute))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := uc.GetStats(firstCtx)
		firstErr <- err
	}()
	<-store.entered

	type result struct {
		stats *dto.VideoStats
		err   error
	}
	second := make(chan result, 1)
	go func() {
		stats, err := uc.GetStats(context.Background())
		second <- result{stats, err}
	}()
	// let the second caller join the in-flight computation
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(store.release)
	got := <-second
	require.NoError(t, got.err)
	assert.EqualValues(t, 1, got.stats.TotalVideos)
}

// countingStore records the paging of every Find call.
type countingStore struct {
	repository.IVideo
	mu      sync.Mutex
	queries []model.VideoQuery
}

func (s *countingStore) Find(ctx context.Context, query model.VideoQuery) ([]model.Video, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	return s.IVideo.Find(ctx, query)
}

func TestGetStats_ReadsStoreInBatches(t *testing.T) {
	var videos []model.Video
	for i := 0; i < 5; i++ {
		videos = append(videos, storedVideo(string(rune('a'+i)), "Tea", "", "Kitchen", i, utils.StringPtr("10")))
	}
	store := &countingStore{IVideo: seedStore(t, videos...)}
	cfg := readCfg
	cfg.StatsBatchSize = 2
	uc := usecase.NewVideoUsecase(store, nil, newAnalytics(), cfg)

	stats, err := uc.GetStats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 5, stats.TotalVideos)
	assert.EqualValues(t, 10, stats.AvgViewCount)
	assert.Equal(t, "Tea", stats.OldestVideo.Title)
	assert.Equal(t, dto.KeywordStat{Keyword: "tea", Count: 5}, stats.TrendingKeywords[0])

	require.Len(t, store.queries, 3)
	for i, q := range store.queries {
		assert.EqualValues(t, 2, q.Limit)
		assert.EqualValues(t, i*2, q.Skip)
	}
}
