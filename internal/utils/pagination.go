package utils

import (
	"math"
	"strconv"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps Skip well inside int64 and Mongo's accepted range.
	MaxPage = 100000
)

type Page struct {
	Page    int
	PerPage int
}

func (p Page) Skip() int64 { return int64(p.Page-1) * int64(p.PerPage) }

func (p Page) Limit() int64 { return int64(p.PerPage) }

// ParsePage reads 1-based page numbers; invalid values fall back to defaults
// and pages past MaxPage are clamped to it.
func ParsePage(page, perPage string) Page {
	out := Page{Page: 1, PerPage: DefaultPerPage}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		out.Page = min(n, MaxPage)
	}
	if n, err := strconv.Atoi(perPage); err == nil && n > 0 && n <= MaxPerPage {
		out.PerPage = n
	}
	return out
}

func TotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}
