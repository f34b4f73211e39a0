package repository

import "math"

// Page is one slice of a sorted, filtered result set.
type Page[T any] struct {
	Content       []T
	Page          int
	PageSize      int
	TotalElements int64
	TotalPages    int
	Last          bool
}

// NewPage computes page counters for content taken at the given offset.
func NewPage[T any](content []T, page, pageSize int, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Page[T]{
		Content:       content,
		Page:          page,
		PageSize:      pageSize,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          page >= totalPages-1,
	}
}

// Offset returns the row offset of a zero-based page. It saturates at
// math.MaxInt instead of overflowing, which reads as past the end.
func Offset(page, pageSize int) int {
	if page <= 0 || pageSize <= 0 {
		return 0
	}
	if page > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return page * pageSize
}
