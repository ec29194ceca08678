package persistence

import (
	"context"
	"testing"
	"time"

	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func sampleVideo(id string, hoursAfter int, title, channel string, views *string) model.Video {
	return model.Video{
		VideoID:      id,
		Title:        title,
		Description:  "about " + title,
		PublishedAt:  baseTime.Add(time.Duration(hoursAfter) * time.Hour),
		ChannelID:    "ch-" + channel,
		ChannelTitle: channel,
		ViewCount:    views,
	}
}

func seedMemory(t *testing.T) *VideoMemoryRepository {
	t.Helper()
	repo := NewVideoMemoryRepository()
	_, err := repo.UpsertMany(context.Background(), []model.Video{
		sampleVideo("a", 1, "How to make tea", "Tea Masters", utils.StringPtr("900")),
		sampleVideo("b", 2, "Cricket final", "Sports Hub", utils.StringPtr("10000")),
		sampleVideo("c", 3, "Tea ceremony", "tea masters", nil),
		sampleVideo("d", 3, "Morning routine", "Daily Vlog", utils.StringPtr("50")),
	})
	require.NoError(t, err)
	return repo
}

func TestMemoryUpsertMany_Idempotent(t *testing.T) {
	repo := NewVideoMemoryRepository()
	ctx := context.Background()
	batch := []model.Video{
		sampleVideo("a", 1, "One", "X", nil),
		sampleVideo("b", 2, "Two", "X", nil),
	}

	res, err := repo.UpsertMany(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, repository.UpsertResult{Inserted: 2}, res)

	first, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)

	batch[0].Title = "One (edited)"
	res, err = repo.UpsertMany(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, repository.UpsertResult{Modified: 2}, res)

	count, err := repo.Count(ctx, model.VideoFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	second, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "One (edited)", second.Title)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
	assert.NotNil(t, second.Tags)
}

func TestMemoryFindByID_NotFound(t *testing.T) {
	repo := NewVideoMemoryRepository()
	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrVideoNotFound)
}

func TestMemoryFindByID_ReturnsCopy(t *testing.T) {
	repo := seedMemory(t)
	v, err := repo.FindByID(context.Background(), "a")
	require.NoError(t, err)
	*v.ViewCount = "0"
	v.Title = "changed"

	again, err := repo.FindByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "How to make tea", again.Title)
	assert.Equal(t, "900", *again.ViewCount)
}

func TestMemoryFind_Filters(t *testing.T) {
	repo := seedMemory(t)
	ctx := context.Background()
	from := baseTime.Add(2 * time.Hour)
	to := baseTime.Add(3 * time.Hour)

	tests := []struct {
		name   string
		filter model.VideoFilter
		want   []string
	}{
		{"channel substring ignores case", model.VideoFilter{Channel: "TEA"}, []string{"c", "a"}},
		{"inclusive date range", model.VideoFilter{DateFrom: &from, DateTo: &to}, []string{"c", "d", "b"}},
		{"open upper bound", model.VideoFilter{DateFrom: &to}, []string{"c", "d"}},
		{"all search terms must match", model.VideoFilter{SearchTerms: []string{"tea", "how"}}, []string{"a"}},
		{"search matches description", model.VideoFilter{SearchTerms: []string{"about", "cricket"}}, []string{"b"}},
		{"no match", model.VideoFilter{SearchTerms: []string{"zzz"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos, err := repo.Find(ctx, model.VideoQuery{Filter: tt.filter})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(videos))

			count, err := repo.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.EqualValues(t, len(tt.want), count)
		})
	}
}

func TestMemoryFind_SortAndPaging(t *testing.T) {
	repo := seedMemory(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query model.VideoQuery
		want  []string
	}{
		{"default newest first with id tiebreak", model.VideoQuery{}, []string{"c", "d", "b", "a"}},
		{"published ascending", model.VideoQuery{SortBy: model.SortByPublishedAt, SortOrder: model.SortAsc}, []string{"a", "b", "c", "d"}},
		{"title ascending", model.VideoQuery{SortBy: model.SortByTitle, SortOrder: model.SortAsc}, []string{"b", "a", "d", "c"}},
		{"views numeric descending", model.VideoQuery{SortBy: model.SortByViewCount, SortOrder: model.SortDesc}, []string{"b", "a", "d", "c"}},
		{"views ascending puts unset first", model.VideoQuery{SortBy: model.SortByViewCount, SortOrder: model.SortAsc}, []string{"c", "d", "a", "b"}},
		{"skip and limit", model.VideoQuery{Skip: 1, Limit: 2}, []string{"d", "b"}},
		{"skip past end", model.VideoQuery{Skip: 10, Limit: 2}, []string{}},
		{"unknown sort falls back", model.VideoQuery{SortBy: "rating"}, []string{"c", "d", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos, err := repo.Find(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(videos))
		})
	}
}

func ids(videos []model.Video) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.VideoID)
	}
	return out
}
