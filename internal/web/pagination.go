package web

// PageCount returns the number of pages needed to show n items at
// perPage items each: ceil(n / perPage).
func PageCount(n, perPage int) int {
	if n <= 0 || perPage <= 0 {
		return 0
	}
	return (n + perPage - 1) / perPage
}

// PageSlice returns the 1-indexed page'th window of items: offsets
// [(page-1)*perPage, min(page*perPage, len(items))).
func PageSlice[T any](items []T, page, perPage int) []T {
	if page < 1 || perPage <= 0 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}
