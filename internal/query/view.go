package query

// View is the query state of one browsing session. It is a value; the
// With methods return a modified copy.
type View struct {
	Search string  `json:"search"`
	Sort   SortKey `json:"sort"`
	Page   int     `json:"page"`
}

// NewView starts at page 1 with no search and the default ordering
func NewView() View {
	return View{Sort: DefaultSort, Page: 1}
}

// WithSearch changes the search text, returning to page 1 if it differs
func (v View) WithSearch(search string) View {
	if search != v.Search {
		v.Search = search
		v.Page = 1
	}
	return v
}

// WithSort changes the ordering, returning to page 1 if it differs
func (v View) WithSort(sort SortKey) View {
	if sort != v.Sort {
		v.Sort = sort
		v.Page = 1
	}
	return v
}

// WithPage moves to page without clamping
func (v View) WithPage(page int) View {
	v.Page = page
	return v
}

// Result is one rendered page of a view
type Result[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	Total      int   `json:"total"`
	Links      []int `json:"links"`
}

// Run applies the view to items already filtered and sorted by Apply
func Run[T any](v View, items []T, size int) Result[T] {
	total := TotalPages(len(items), size)
	return Result[T]{
		Items:      Paginate(items, size, v.Page),
		Page:       v.Page,
		TotalPages: total,
		Total:      len(items),
		Links:      PageLinks(v.Page, total),
	}
}
