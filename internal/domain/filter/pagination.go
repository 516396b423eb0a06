package filter

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type PaginationInput struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

type PaginationInputWithFilter struct {
	PaginationInput
	DynamicFilter
}

func (p PaginationInput) GetPageNumber() int {
	if p.PageNumber < 1 {
		return 1
	}
	return p.PageNumber
}

func (p PaginationInput) GetPageSize() int {
	switch {
	case p.PageSize <= 0:
		return defaultPageSize
	case p.PageSize > maxPageSize:
		return maxPageSize
	}
	return p.PageSize
}

func (p PaginationInput) GetOffset() int {
	return (p.GetPageNumber() - 1) * p.GetPageSize()
}

type PagedList[T any] struct {
	PageNumber      int   `json:"pageNumber"`
	PageSize        int   `json:"pageSize"`
	TotalRows       int64 `json:"totalRows"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	Items           []T   `json:"items"`
}

func NewPagedList[T any](items []T, totalRows int64, input PaginationInput) *PagedList[T] {
	pageSize := input.GetPageSize()
	pageNumber := input.GetPageNumber()

	totalPages := int((totalRows + int64(pageSize) - 1) / int64(pageSize))
	if items == nil {
		items = []T{}
	}

	return &PagedList[T]{
		PageNumber:      pageNumber,
		PageSize:        pageSize,
		TotalRows:       totalRows,
		TotalPages:      totalPages,
		HasPreviousPage: pageNumber > 1,
		HasNextPage:     pageNumber < totalPages,
		Items:           items,
	}
}
