package domain

// PaginationParams selects one page of a newest-first list such as a user's notifications.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset is the number of rows before the page. Pages below 1 start at the first row.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages is how many pages of PageSize hold total rows; 0 when PageSize is not positive.
func (p PaginationParams) TotalPages(total int) int {
	if p.PageSize < 1 || total < 1 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}
