package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"video-fetcher/domain/dto"
	"video-fetcher/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Context keys under which validated requests are stored
const (
	VideoListRequestKey   = "videoListRequest"
	VideoSearchRequestKey = "videoSearchRequest"
	VideoIDRequestKey     = "videoIDRequest"
)

const (
	msgValidationFailed  = "Validation failed"
	msgInvalidPagination = "Invalid pagination parameters. Page must be >= 1, limit must be between 1-100"
)

var registerTagNames sync.Once

// useParamNames reports validation errors by query/path parameter name instead of struct field name.
func useParamNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"form", "uri"} {
				if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// ValidateVideoList binds and checks GET /api/videos query parameters
func ValidateVideoList() gin.HandlerFunc {
	useParamNames()
	return func(ctx *gin.Context) {
		var req dto.VideoListRequest
		if err := ctx.ShouldBindQuery(&req); err != nil {
			abortValidation(ctx, err)
			return
		}
		var fieldErrs []dto.FieldError
		for _, d := range []struct{ field, value string }{{"dateFrom", req.DateFrom}, {"dateTo", req.DateTo}} {
			if d.value == "" {
				continue
			}
			if _, err := utils.ParseDate(d.value); err != nil {
				fieldErrs = append(fieldErrs, dto.FieldError{Field: d.field, Message: fmt.Sprintf("Invalid %s format", d.field)})
			}
		}
		if len(fieldErrs) > 0 {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msgValidationFailed, "errors": fieldErrs})
			return
		}
		ctx.Set(VideoListRequestKey, &req)
		ctx.Next()
	}
}

// ValidateVideoSearch binds and checks GET /api/videos/search query parameters
func ValidateVideoSearch() gin.HandlerFunc {
	useParamNames()
	return func(ctx *gin.Context) {
		var req dto.VideoSearchRequest
		if err := ctx.ShouldBindQuery(&req); err != nil {
			abortValidation(ctx, err)
			return
		}
		req.Q = strings.TrimSpace(req.Q)
		if req.Q == "" {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":  msgValidationFailed,
				"errors": []dto.FieldError{{Field: "q", Message: "Search query is required"}},
			})
			return
		}
		ctx.Set(VideoSearchRequestKey, &req)
		ctx.Next()
	}
}

// ValidateVideoID binds and checks the :id path parameter
func ValidateVideoID() gin.HandlerFunc {
	useParamNames()
	return func(ctx *gin.Context) {
		var req dto.VideoIDRequest
		if err := ctx.ShouldBindUri(&req); err != nil {
			abortValidation(ctx, err)
			return
		}
		ctx.Set(VideoIDRequestKey, &req)
		ctx.Next()
	}
}

func abortValidation(ctx *gin.Context, err error) {
	fieldErrs := toFieldErrors(ctx, err)
	msg := msgValidationFailed
	for _, fe := range fieldErrs {
		if fe.Field == "page" || fe.Field == "limit" {
			msg = msgInvalidPagination
			break
		}
	}
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "errors": fieldErrs})
}

func toFieldErrors(ctx *gin.Context, err error) []dto.FieldError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		// malformed values fail before validation, e.g. page=abc
		return []dto.FieldError{{Field: malformedField(ctx), Message: "Invalid value"}}
	}
	out := make([]dto.FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, dto.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

// malformedField finds the numeric parameter that failed to parse; binding errors carry no field name.
func malformedField(ctx *gin.Context) string {
	for _, name := range []string{"page", "limit"} {
		if v, ok := ctx.GetQuery(name); ok {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return name
			}
		}
	}
	return "query"
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "page":
		return "Page must be a positive integer"
	case "limit":
		return "Limit must be between 1 and 100"
	case "sortBy":
		return "Invalid sort field"
	case "sortOrder":
		return "Sort order must be asc or desc"
	case "channel":
		return "Channel filter must be 1-100 characters"
	case "q":
		if fe.Tag() == "required" {
			return "Search query is required"
		}
		return "Search query must be 1-200 characters"
	case "id":
		if fe.Tag() == "required" {
			return "Video ID is required"
		}
		return "Video ID must be 1-50 characters"
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
