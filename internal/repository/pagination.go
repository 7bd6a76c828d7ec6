package repository

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a clamped page request: Page >= 1, Limit within [1, MaxLimit].
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page and limit. Zero values fall back to the defaults.
func NewPage(page, limit int) Page {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}
