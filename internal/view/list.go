package view

import "sort"

// DefaultPageSize is the number of rows shown per page
const DefaultPageSize = 5

// List holds an in-memory collection with purely local sorting, filtering,
// and pagination. The visible slice is recomputed from the full collection
// on every read; nothing is cached between reads.
type List[T any] struct {
	items    []T
	keep     func(T) bool
	less     func(a, b T) bool
	page     int
	pageSize int
}

// NewList creates an empty list. pageSize <= 0 falls back to
// DefaultPageSize.
func NewList[T any](pageSize int) *List[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &List[T]{page: 1, pageSize: pageSize}
}

// SetItems replaces the collection. The current page is clamped rather
// than reset so an in-place patch does not jump the user back to page 1.
func (l *List[T]) SetItems(items []T) {
	l.items = items
	l.clampPage()
}

// Patch replaces the first item matching pred with item. Returns false
// when no item matched.
func (l *List[T]) Patch(pred func(T) bool, item T) bool {
	for i := range l.items {
		if pred(l.items[i]) {
			l.items[i] = item
			return true
		}
	}
	return false
}

// SetFilter installs a filter predicate and resets to page 1. A nil
// predicate clears the filter.
func (l *List[T]) SetFilter(keep func(T) bool) {
	l.keep = keep
	l.page = 1
}

// SetSort installs a comparator. The page does not reset; the user keeps
// their place while the ordering changes under them.
func (l *List[T]) SetSort(less func(a, b T) bool) {
	l.less = less
}

// All returns the filtered, sorted collection without pagination
func (l *List[T]) All() []T {
	out := make([]T, 0, len(l.items))
	for _, item := range l.items {
		if l.keep == nil || l.keep(item) {
			out = append(out, item)
		}
	}
	if l.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return l.less(out[i], out[j]) })
	}
	return out
}

// Visible returns the current page of the filtered, sorted collection
func (l *List[T]) Visible() []T {
	all := l.All()
	start := (l.page - 1) * l.pageSize
	if start >= len(all) {
		return nil
	}
	end := start + l.pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// Len returns the filtered item count
func (l *List[T]) Len() int {
	return len(l.All())
}

// Page returns the current 1-based page number
func (l *List[T]) Page() int {
	return l.page
}

// PageCount returns the number of pages for the filtered collection,
// at least 1
func (l *List[T]) PageCount() int {
	n := (l.Len() + l.pageSize - 1) / l.pageSize
	if n < 1 {
		n = 1
	}
	return n
}

// NextPage advances one page, saturating at the last page
func (l *List[T]) NextPage() {
	if l.page < l.PageCount() {
		l.page++
	}
}

// PrevPage goes back one page, saturating at page 1
func (l *List[T]) PrevPage() {
	if l.page > 1 {
		l.page--
	}
}

func (l *List[T]) clampPage() {
	if l.page > l.PageCount() {
		l.page = l.PageCount()
	}
	if l.page < 1 {
		l.page = 1
	}
}
