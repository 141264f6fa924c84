package core

// Pagination window limits. Requests outside these bounds are rejected at the
// boundary, never clamped silently.
const (
	MinPage  = 1
	MinLimit = 1
	MaxLimit = 100

	DefaultLimit = 20
)

// Pagination describes the window of a list response.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewPagination computes page metadata for a list of total items. Page and
// limit are assumed already validated (page >= 1, limit in [1,100]).
func NewPagination(page, limit, total int) Pagination {
	totalPages := (total + limit - 1) / limit
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// Skip returns the offset of the first item on the page.
func Skip(page, limit int) int {
	return (page - 1) * limit
}
