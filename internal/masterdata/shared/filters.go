package shared

// ListFilters captures common listing parameters for masterdata tables.
type ListFilters struct {
	Search  string
	Divisi  string
	Page    int
	Limit   int
	SortBy  string
	SortDir string
}

// Normalize applies defaults for pagination.
func (f *ListFilters) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
}
