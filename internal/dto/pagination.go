package dto

// Pagination defines parameters for paginated requests.
type Pagination struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
	Page   int `query:"page"` // alternative to offset, 1-based
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize applies defaults and converts Page into Offset.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Page > 0 {
		p.Offset = (p.Page - 1) * p.Limit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PaginationInfo defines pagination details for responses.
type PaginationInfo struct {
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
}

func NewPaginationInfo(p Pagination, total int) PaginationInfo {
	info := PaginationInfo{
		TotalItems: int64(total),
		Limit:      p.Limit,
		Offset:     p.Offset,
	}
	if p.Limit > 0 {
		info.CurrentPage = p.Offset/p.Limit + 1
		info.TotalPages = (total + p.Limit - 1) / p.Limit
	}
	return info
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
