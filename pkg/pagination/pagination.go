// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination parses ?page and ?limit for list endpoints and builds the
// "meta" block of paginated responses.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPage is the first page; pages are 1-indexed.
	DefaultPage = 1
	// DefaultLimit applies when ?limit is absent or unusable.
	DefaultLimit = 10
	// MaxLimit caps ?limit; larger values are clamped to it.
	MaxLimit = 100
)

// Params is a validated page request.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows to skip for [Params.Page].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta accompanies every paginated response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewMeta builds [Meta], deriving TotalPages from total and limit.
func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}

// FromRequest reads page and limit from the query string.
//
// Missing, malformed or non-positive values fall back to the defaults; a
// limit above [MaxLimit] is clamped to it.
func FromRequest(r *http.Request) Params {
	query := r.URL.Query()

	page := positiveInt(query.Get("page"), DefaultPage)
	limit := min(positiveInt(query.Get("limit"), DefaultLimit), MaxLimit)

	return Params{Page: page, Limit: limit}
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
