package model

// Page identifies one page of a listing. Pages are 1-based; zero values
// mean "use the endpoint's defaults".
type Page struct {
	Page     int
	PageSize int
}

// Paginated is a page of results as returned by the backend list endpoints.
type Paginated[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// HasMore reports whether pages beyond this one exist.
func (p *Paginated[T]) HasMore() bool {
	return p.Page*p.PageSize < p.Total
}
