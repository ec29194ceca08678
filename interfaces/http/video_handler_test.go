package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"video-fetcher/domain/dto"
	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	httpHandler "video-fetcher/interfaces/http"
	"video-fetcher/interfaces/middleware"
	"video-fetcher/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVideoUsecase struct {
	mock.Mock
}

func (m *MockVideoUsecase) ListVideos(ctx context.Context, req *dto.VideoListRequest) (*dto.VideoListData, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VideoListData), args.Error(1)
}

func (m *MockVideoUsecase) SearchVideos(ctx context.Context, req *dto.VideoSearchRequest) (*dto.VideoSearchData, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VideoSearchData), args.Error(1)
}

func (m *MockVideoUsecase) GetVideo(ctx context.Context, videoID string) (*model.Video, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

func (m *MockVideoUsecase) GetStats(ctx context.Context) (*dto.VideoStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VideoStats), args.Error(1)
}

var _ usecase.IVideoUsecase = (*MockVideoUsecase)(nil)

func videoRouter(uc usecase.IVideoUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := httpHandler.NewVideoHandler(uc)
	r := gin.New()
	r.GET("/api/videos", middleware.ValidateVideoList(), h.GetVideos)
	r.GET("/api/videos/search", middleware.ValidateVideoSearch(), h.SearchVideos)
	r.GET("/api/videos/stats", h.GetStats)
	r.GET("/api/videos/:id", middleware.ValidateVideoID(), h.GetVideoByID)
	return r
}

func serve(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGetVideoByID_NotFound(t *testing.T) {
	uc := new(MockVideoUsecase)
	uc.On("GetVideo", mock.Anything, "missing").Return(nil, repository.ErrVideoNotFound)

	w := serve(videoRouter(uc), "/api/videos/missing")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Video not found"}`, w.Body.String())
}

func TestGetVideoByID_Found(t *testing.T) {
	uc := new(MockVideoUsecase)
	uc.On("GetVideo", mock.Anything, "abc").Return(&model.Video{VideoID: "abc", Title: "Tea", Tags: []string{}}, nil)

	w := serve(videoRouter(uc), "/api/videos/abc")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool        `json:"success"`
		Data    model.Video `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Tea", body.Data.Title)
}

func TestGetVideos_PassesValidatedRequest(t *testing.T) {
	uc := new(MockVideoUsecase)
	uc.On("ListVideos", mock.Anything, &dto.VideoListRequest{
		Page: 2, Limit: 5, SortBy: "title", SortOrder: "asc", Channel: "tea",
	}).Return(&dto.VideoListData{Videos: []model.Video{}, Pagination: dto.NewPagination(2, 5, 6)}, nil)

	w := serve(videoRouter(uc), "/api/videos?page=2&limit=5&sortBy=title&sortOrder=asc&channel=tea")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"prevPage":1`)
	uc.AssertExpectations(t)
}

func TestGetVideos_StoreErrorIs500(t *testing.T) {
	uc := new(MockVideoUsecase)
	uc.On("ListVideos", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	w := serve(videoRouter(uc), "/api/videos")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestGetVideos_InvalidPagination(t *testing.T) {
	uc := new(MockVideoUsecase)
	w := serve(videoRouter(uc), "/api/videos?limit=0")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "ListVideos", mock.Anything, mock.Anything)
}

func TestSearchVideos(t *testing.T) {
	uc := new(MockVideoUsecase)
	uc.On("SearchVideos", mock.Anything, &dto.VideoSearchRequest{Q: "tea how", Page: 1, Limit: 10}).
		Return(&dto.VideoSearchData{Videos: []model.Video{}, SearchQuery: "tea how", Pagination: dto.NewPagination(1, 10, 0)}, nil)

	w := serve(videoRouter(uc), "/api/videos/search?q=tea%20how")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"searchQuery":"tea how"`)
	uc.AssertExpectations(t)
}

func TestGetStats(t *testing.T) {
	uc := new(MockVideoUsecase)
	uc.On("GetStats", mock.Anything).Return(&dto.VideoStats{
		OverviewStats: dto.OverviewStats{
			TotalVideos: 2,
			LatestVideo: &model.VideoSummary{Title: "New", PublishedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
		SearchQuery: "cricket",
		CacheStats:  repository.CacheStats{Hits: 1, Misses: 2, HitRate: 1.0 / 3},
	}, nil)

	w := serve(videoRouter(uc), "/api/videos/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, field := range []string{
		"totalVideos", "uniqueChannels", "avgDescriptionLength", "avgViewCount", "avgLikeCount",
		"latestVideo", "oldestVideo", "searchQuery", "topChannels", "dailyTrends", "trendingKeywords", "cacheStats",
	} {
		assert.Contains(t, body.Data, field)
	}
	assert.JSONEq(t, `"cricket"`, string(body.Data["searchQuery"]))
}

func TestGetStats_Error(t *testing.T) {
	uc := new(MockVideoUsecase)
	uc.On("GetStats", mock.Anything).Return(nil, errors.New("boom"))

	w := serve(videoRouter(uc), "/api/videos/stats")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
