package http

import (
	"errors"
	"net/http"

	"video-fetcher/domain/dto"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/interfaces/middleware"
	"video-fetcher/usecase"

	"github.com/gin-gonic/gin"
)

const msgInternalError = "Internal server error"

// IVideoHandler defines the HTTP handlers of the video read API
type IVideoHandler interface {
	GetVideos(ctx *gin.Context)
	SearchVideos(ctx *gin.Context)
	GetVideoByID(ctx *gin.Context)
	GetStats(ctx *gin.Context)
}

type VideoHandler struct {
	videoUsecase usecase.IVideoUsecase
}

func NewVideoHandler(videoUsecase usecase.IVideoUsecase) IVideoHandler {
	return &VideoHandler{videoUsecase: videoUsecase}
}

// GetVideos handles GET /api/videos
func (h *VideoHandler) GetVideos(ctx *gin.Context) {
	req, ok := request[dto.VideoListRequest](ctx, middleware.VideoListRequestKey)
	if !ok {
		return
	}
	data, err := h.videoUsecase.ListVideos(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err, "Error fetching videos")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// SearchVideos handles GET /api/videos/search
func (h *VideoHandler) SearchVideos(ctx *gin.Context) {
	req, ok := request[dto.VideoSearchRequest](ctx, middleware.VideoSearchRequestKey)
	if !ok {
		return
	}
	data, err := h.videoUsecase.SearchVideos(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err, "Error searching videos")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// GetVideoByID handles GET /api/videos/:id
func (h *VideoHandler) GetVideoByID(ctx *gin.Context) {
	videoID := ctx.Param("id")
	if req, ok := ctx.Get(middleware.VideoIDRequestKey); ok {
		videoID = req.(*dto.VideoIDRequest).ID
	}
	video, err := h.videoUsecase.GetVideo(ctx.Request.Context(), videoID)
	if errors.Is(err, repository.ErrVideoNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if err != nil {
		respondError(ctx, err, "Error fetching video by ID")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": video})
}

// GetStats handles GET /api/videos/stats
func (h *VideoHandler) GetStats(ctx *gin.Context) {
	stats, err := h.videoUsecase.GetStats(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, "Error fetching stats")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// request returns the request validated by middleware, binding the query itself when none was stored.
func request[T any](ctx *gin.Context, key string) (*T, bool) {
	if v, ok := ctx.Get(key); ok {
		if req, ok := v.(*T); ok {
			return req, true
		}
	}
	req := new(T)
	if err := ctx.ShouldBindQuery(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": []dto.FieldError{{Field: "query", Message: err.Error()}}})
		return nil, false
	}
	return req, true
}

func respondError(ctx *gin.Context, err error, msg string) {
	if errors.Is(err, repository.ErrInvalidQuery) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_ = ctx.Error(err)
	logger.GetLogger().WithField("error", err).Error(msg)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
}
