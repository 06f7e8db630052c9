package listing

// Page is the visible slice of a filtered listing
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Visible int  `json:"visible"`
	HasMore bool `json:"hasMore"`
}

// Paginate returns the first visible items of filtered. HasMore is true
// exactly when visible < len(filtered).
func Paginate[T any](filtered []T, visible int) Page[T] {
	if visible < 0 {
		visible = 0
	}
	n := min(visible, len(filtered))
	shown := make([]T, n)
	copy(shown, filtered[:n])
	return Page[T]{
		Items:   shown,
		Total:   len(filtered),
		Visible: visible,
		HasMore: visible < len(filtered),
	}
}

// Advance moves the cursor forward by one page. It never decreases the
// cursor; a non-positive page size leaves it unchanged.
func Advance(visible, pageSize int) int {
	if pageSize <= 0 {
		return visible
	}
	return visible + pageSize
}
