package service

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid")
	ErrInvalidURL   = errors.New("invalid YouTube URL")
	ErrFetchFailure = errors.New("transcript fetch failed")
	ErrTooLarge     = errors.New("too large")
)
