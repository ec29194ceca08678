package http

import (
	"net/http"
	"time"

	"video-fetcher/infrastructure/utils"
	"video-fetcher/usecase"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Health(ctx *gin.Context)
	NotFound(ctx *gin.Context)
}

type HealthHandler struct {
	fetcher   usecase.IFetcherUsecase
	startedAt time.Time
}

// NewHealthHandler reports uptime from now. fetcher may be nil when ingestion is not running in this process.
func NewHealthHandler(fetcher usecase.IFetcherUsecase) IHealthHandler {
	return &HealthHandler{fetcher: fetcher, startedAt: time.Now()}
}

// Health handles GET /health
func (h *HealthHandler) Health(ctx *gin.Context) {
	body := gin.H{
		"status":    "OK",
		"timestamp": utils.GetCurrentTime().Format(time.RFC3339Nano),
		"uptime":    time.Since(h.startedAt).Seconds(),
	}
	if h.fetcher != nil {
		body["watermark"] = h.fetcher.Watermark()
		body["fetchRunning"] = h.fetcher.IsRunning()
	}
	ctx.JSON(http.StatusOK, body)
}

// NotFound answers unmatched routes
func (h *HealthHandler) NotFound(ctx *gin.Context) {
	ctx.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
}
