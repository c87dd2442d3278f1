package domain

// Sort columns accepted by product listing.
const (
	SortByName    = "name"
	SortByPrice   = "price"
	SortByCreated = "created_at"
	SortByRating  = "rating"
)

// ProductFilter narrows and orders a product listing. Zero values mean
// "no constraint"; amounts are cents.
type ProductFilter struct {
	Query       string
	CategoryID  string
	MinPrice    int64
	MaxPrice    int64
	InStockOnly bool
	ActiveOnly  bool
	SortBy      string
	SortDesc    bool
	Page        int
	Limit       int
}

// Normalize clamps paging to sane bounds and defaults the sort column.
func (f ProductFilter) Normalize() ProductFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	switch f.SortBy {
	case SortByName, SortByPrice, SortByCreated, SortByRating:
	default:
		f.SortBy = SortByCreated
		f.SortDesc = true
	}
	return f
}

func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ProductPage is one page of a filtered listing plus the totals the
// pagination envelope needs.
type ProductPage struct {
	Products []Product
	Page     int
	Limit    int
	Total    int
}

func (p ProductPage) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}
