package pagination

// Page-number pagination for dashboard tab lists. The same filter-then-slice
// pipeline backs the users, assets, campaigns, and offers tabs, so it lives
// here once instead of being restated per tab.

// DefaultPageSize matches the dashboard tab tables.
const DefaultPageSize = 10

// Filter returns the items satisfying the predicate, preserving input order.
func Filter[T any](items []T, keep func(T) bool) []T {
	if keep == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Paginate slices the given page out of items. Pages are 1-based; a page or
// size below 1 normalizes to 1 and DefaultPageSize respectively. A page past
// the end yields an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if size < 1 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages computes ceil(total/size) with the same size normalization.
func TotalPages(total, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
