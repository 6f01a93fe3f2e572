package helpers

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"grubio/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads ?page and ?page_size. Missing, malformed or non-positive
// values use the defaults; page_size is capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.PaginationParams{
		Page:     queryInt(q, "page", DefaultPage, math.MaxInt32),
		PageSize: queryInt(q, "page_size", DefaultPageSize, MaxPageSize),
	}
}

func queryInt(q url.Values, key string, def, ceiling int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 1 {
		return def
	}
	return min(v, ceiling)
}

// PaginationMeta accompanies paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	p := domain.PaginationParams{Page: page, PageSize: pageSize}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: p.TotalPages(total),
	}
}
