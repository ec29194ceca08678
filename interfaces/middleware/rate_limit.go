package middleware

import (
	"net/http"
	"strconv"
	"time"

	"video-fetcher/infrastructure/configuration"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Rule names
const (
	RuleGeneral = "general"
	RuleVideos  = "videos"
	RuleSearch  = "search"
	RuleStats   = "stats"
)

var rateLimitMessages = map[string]string{
	RuleGeneral: "Too many requests from this IP, please try again later.",
	RuleVideos:  "Too many video list requests, please wait before requesting more videos.",
	RuleSearch:  "Too many search requests, please wait before searching again.",
	RuleStats:   "Too many stats requests, please wait before requesting stats again.",
}

// RateLimiter allows each client IP a budget of requests per window.
type RateLimiter struct {
	name           string
	rule           configuration.RateLimitRule
	skipSuccessful bool
	limiters       *gocache.Cache
}

// NewRateLimiter builds a per-IP limiter. With skipSuccessful only responses with
// status >= 400 use up the budget.
func NewRateLimiter(name string, rule configuration.RateLimitRule, skipSuccessful bool) *RateLimiter {
	window := rule.Window()
	return &RateLimiter{
		name:           name,
		rule:           rule,
		skipSuccessful: skipSuccessful,
		// idle clients are forgotten once a full window has passed
		limiters: gocache.New(window, window),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.limiters.SetDefault(key, lim)
		return lim
	}
	every := l.rule.Window() / time.Duration(l.rule.Requests)
	lim := rate.NewLimiter(rate.Every(every), l.rule.Requests)
	if err := l.limiters.Add(key, lim, gocache.DefaultExpiration); err != nil {
		// another request created it first
		if v, ok := l.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Handler rejects over-budget requests with 429 {error, retryAfter}
func (l *RateLimiter) Handler() gin.HandlerFunc {
	retryAfter := int64(l.rule.Window().Seconds())
	message := rateLimitMessages[l.name]
	if message == "" {
		message = rateLimitMessages[RuleGeneral]
	}

	return func(ctx *gin.Context) {
		lim := l.limiter(ctx.ClientIP())

		var allowed bool
		if l.skipSuccessful {
			allowed = lim.Tokens() >= 1
		} else {
			allowed = lim.Allow()
		}
		if !allowed {
			metrics.RateLimitedTotal.WithLabelValues(l.name).Inc()
			logger.GetLogger().WithFields(map[string]interface{}{
				"ip":       ctx.ClientIP(),
				"endpoint": ctx.Request.URL.Path,
				"rule":     l.name,
			}).Warn("Rate limit exceeded")
			ctx.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      message,
				"retryAfter": retryAfter,
			})
			return
		}

		ctx.Next()

		if l.skipSuccessful && ctx.Writer.Status() >= http.StatusBadRequest {
			lim.Allow()
		}
	}
}

// RateLimit returns the handler for rule, or a pass-through when rate limiting is disabled.
func RateLimit(cfg configuration.RateLimit, name string) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(ctx *gin.Context) { ctx.Next() }
	}
	var rule configuration.RateLimitRule
	skipSuccessful := false
	switch name {
	case RuleVideos:
		rule = cfg.Videos
	case RuleSearch:
		rule, skipSuccessful = cfg.Search, true
	case RuleStats:
		rule = cfg.Stats
	default:
		rule = cfg.General
	}
	if rule.Requests <= 0 || rule.WindowSeconds <= 0 {
		return func(ctx *gin.Context) { ctx.Next() }
	}
	return NewRateLimiter(name, rule, skipSuccessful).Handler()
}
