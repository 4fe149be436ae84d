package dto

// Pagination is embedded in list responses.
type Pagination struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Pages    int   `json:"pages"`
}

func NewPagination(total int64, page, pageSize int) Pagination {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Pagination{Total: total, Page: page, PageSize: pageSize, Pages: pages}
}

// SuccessResponse is returned by endpoints with nothing else to say.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
