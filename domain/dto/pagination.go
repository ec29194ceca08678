package dto

// Pagination describes the position of a page within a result set
type Pagination struct {
	CurrentPage int64  `json:"currentPage"`
	TotalPages  int64  `json:"totalPages"`
	TotalVideos int64  `json:"totalVideos"`
	Limit       int64  `json:"limit"`
	HasNext     bool   `json:"hasNext"`
	HasPrev     bool   `json:"hasPrev"`
	NextPage    *int64 `json:"nextPage"`
	PrevPage    *int64 `json:"prevPage"`
}

// NewPagination computes page metadata. limit must be positive.
func NewPagination(page, limit, total int64) Pagination {
	totalPages := (total + limit - 1) / limit
	p := Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalVideos: total,
		Limit:       limit,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
	if p.HasNext {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrev {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

// Skip returns the number of records before the page.
func Skip(page, limit int64) int64 {
	return (page - 1) * limit
}
