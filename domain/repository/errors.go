package repository

import "errors"

var (
	ErrVideoNotFound        = errors.New("video not found")
	ErrCredentialsExhausted = errors.New("all API keys exhausted")
	ErrUpstream             = errors.New("upstream request failed")
	ErrFetchInProgress      = errors.New("fetch already in progress")
	ErrInvalidQuery         = errors.New("invalid query")
)
