package domain

const (
	// DefaultPageLimit applies when a list request names no limit.
	DefaultPageLimit = 20
	// MaxPageLimit bounds every list query.
	MaxPageLimit = 100
)

// PaginationParams selects one 1-indexed page of a list.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams normalises optional page and limit query values.
// Missing or non-positive values take the defaults and the limit is clamped
// to MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset is the number of rows to skip.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of results plus the total number of matching rows.
type Page[T any] struct {
	Items []T
	Total int64
	PaginationParams
}
