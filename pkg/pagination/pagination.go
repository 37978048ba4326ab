package pagination

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 50
	// MaxPageSize caps how many rows any page query can request.
	MaxPageSize = 500
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Meta describes the page that was returned.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Normalize enforces a 1-based page and the default and maximum page sizes.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	p.PageSize = NormalizePageSize(p.PageSize)
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// NormalizePageSize enforces the configured default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// NewMeta builds the response metadata for a page of a result set of total rows.
func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	pages := 0
	if total > 0 {
		pages = int((total + int64(n.PageSize) - 1) / int64(n.PageSize))
	}
	return Meta{Page: n.Page, PageSize: n.PageSize, Total: total, TotalPages: pages}
}

// HasMore reports whether pages remain after the one described by m.
func (m Meta) HasMore() bool {
	return m.Page < m.TotalPages
}
