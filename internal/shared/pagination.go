package shared

import "math"

// Ellipsis marks a collapsed run of pages in a page-number strip.
const Ellipsis = 0

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata. The page is clamped into
// [1, TotalPages] so a stale page index after a filter change lands on the
// last available page, and an empty result set yields page 1 of 1.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 10
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open slice window [start, end) for the current page.
func (p Pagination) Bounds() (int, int) {
	start := (p.Page - 1) * p.PerPage
	if start > p.Total {
		start = p.Total
	}
	end := start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// PageNumbers builds the page-number strip shared by every table: the first
// and last page are always present, a contiguous window of the given radius
// surrounds the current page, and any gap between the fixed ends and the
// window collapses into a single Ellipsis entry. Returns nil when there is
// only one page.
func PageNumbers(current, total, radius int) []int {
	if total <= 1 {
		return nil
	}
	if radius < 1 {
		radius = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	pages := []int{1}
	start := current - radius
	if start < 2 {
		start = 2
	}
	end := current + radius
	if end > total-1 {
		end = total - 1
	}
	if start > 2 {
		pages = append(pages, Ellipsis)
	}
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	if end < total-1 {
		pages = append(pages, Ellipsis)
	}
	return append(pages, total)
}
