package query

// PageSize is the number of images shown per page
const PageSize = 12

// TotalPages returns ceil(n / size), 0 for an empty result
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns the 1-based page of items. Pages outside
// [1, TotalPages] are empty.
func Paginate[T any](items []T, size, page int) []T {
	if size <= 0 || page < 1 || page > TotalPages(len(items), size) {
		return []T{}
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	return items[start:end]
}

// Ellipsis marks a gap in the output of PageLinks
const Ellipsis = 0

// PageLinks lists the page numbers to offer around current: the first and
// last page, current and its neighbours, and Ellipsis where pages are
// skipped two steps away from current.
func PageLinks(current, total int) []int {
	links := make([]int, 0)
	for p := 1; p <= total; p++ {
		switch {
		case p == 1 || p == total || (p >= current-1 && p <= current+1):
			links = append(links, p)
		case p == current-2 || p == current+2:
			links = append(links, Ellipsis)
		}
	}
	return links
}
