package dto

// TotalPages computes the page count for a paginated response.
func TotalPages(total, pageSize int) int {
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}
