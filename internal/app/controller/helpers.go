package controller

// orEmpty keeps list endpoints from encoding null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
