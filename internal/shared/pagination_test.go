package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPaginationClampsPage(t *testing.T) {
	p := NewPagination(4, 10, 23)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 3, p.Page)

	p = NewPagination(0, 10, 23)
	require.Equal(t, 1, p.Page)

	p = NewPagination(-5, 10, 23)
	require.Equal(t, 1, p.Page)
}

func TestNewPaginationEmptyResult(t *testing.T) {
	p := NewPagination(7, 10, 0)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 1, p.TotalPages)
	start, end := p.Bounds()
	require.Equal(t, 0, start)
	require.Equal(t, 0, end)
}

func TestNewPaginationDefaultsPerPage(t *testing.T) {
	p := NewPagination(1, 0, 25)
	require.Equal(t, 10, p.PerPage)
	require.Equal(t, 3, p.TotalPages)
}

func TestPaginationBounds(t *testing.T) {
	p := NewPagination(3, 10, 23)
	start, end := p.Bounds()
	require.Equal(t, 20, start)
	require.Equal(t, 23, end)

	p = NewPagination(1, 10, 23)
	start, end = p.Bounds()
	require.Equal(t, 0, start)
	require.Equal(t, 10, end)
}

func TestPageNumbersSinglePage(t *testing.T) {
	require.Nil(t, PageNumbers(1, 1, 1))
	require.Nil(t, PageNumbers(1, 0, 1))
}

func TestPageNumbersNoGaps(t *testing.T) {
	require.Equal(t, []int{1, 2, 3}, PageNumbers(2, 3, 1))
	require.Equal(t, []int{1, 2, 3, 4, 5}, PageNumbers(3, 5, 2))
}

func TestPageNumbersCollapsesGaps(t *testing.T) {
	// Both ends far from the current page collapse into one ellipsis each.
	require.Equal(t, []int{1, Ellipsis, 4, 5, 6, Ellipsis, 10}, PageNumbers(5, 10, 1))
	// Current page near the start: no leading ellipsis.
	require.Equal(t, []int{1, 2, 3, Ellipsis, 10}, PageNumbers(2, 10, 1))
	// Current page near the end: no trailing ellipsis.
	require.Equal(t, []int{1, Ellipsis, 8, 9, 10}, PageNumbers(9, 10, 1))
}

func TestPageNumbersClampsCurrent(t *testing.T) {
	require.Equal(t, PageNumbers(1, 10, 1), PageNumbers(-3, 10, 1))
	require.Equal(t, PageNumbers(10, 10, 1), PageNumbers(99, 10, 1))
}
