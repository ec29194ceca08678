package dto

import (
	"video-fetcher/domain/model"
)

// VideoListRequest represents query parameters for GET /api/videos
type VideoListRequest struct {
	Page      int64  `form:"page,default=1" url:"page" binding:"min=1"`
	Limit     int64  `form:"limit,default=10" url:"limit" binding:"min=1,max=100"`
	SortBy    string `form:"sortBy,default=publishedAt" url:"sortBy" binding:"omitempty,oneof=publishedAt title viewCount likeCount"`
	SortOrder string `form:"sortOrder,default=desc" url:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Channel   string `form:"channel" url:"channel,omitempty" binding:"omitempty,min=1,max=100"`
	DateFrom  string `form:"dateFrom" url:"dateFrom,omitempty"`
	DateTo    string `form:"dateTo" url:"dateTo,omitempty"`
}

// VideoSearchRequest represents query parameters for GET /api/videos/search
type VideoSearchRequest struct {
	Q     string `form:"q" url:"q" binding:"required,min=1,max=200"`
	Page  int64  `form:"page,default=1" url:"page" binding:"min=1"`
	Limit int64  `form:"limit,default=10" url:"limit" binding:"min=1,max=100"`
}

// VideoIDRequest represents the path parameter of GET /api/videos/:id
type VideoIDRequest struct {
	ID string `uri:"id" binding:"required,min=1,max=50"`
}

// AppliedFilters echoes the list filters back to the caller
type AppliedFilters struct {
	Channel   *string `json:"channel"`
	DateFrom  *string `json:"dateFrom"`
	DateTo    *string `json:"dateTo"`
	SortBy    string  `json:"sortBy"`
	SortOrder string  `json:"sortOrder"`
}

// VideoListData is the data payload of a list response
type VideoListData struct {
	Videos     []model.Video  `json:"videos"`
	Filters    AppliedFilters `json:"filters"`
	Pagination Pagination     `json:"pagination"`
}

// VideoSearchData is the data payload of a search response
type VideoSearchData struct {
	Videos      []model.Video `json:"videos"`
	SearchQuery string        `json:"searchQuery"`
	Pagination  Pagination    `json:"pagination"`
}

// FieldError is a single validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
