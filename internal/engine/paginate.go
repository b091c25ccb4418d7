package engine

import (
	"fmt"
	"slices"

	"finanzas/internal/core"
)

// Paginate returns the 1-indexed page of items. Pages outside the range are
// empty, not an error. The returned slice never aliases items.
func Paginate[T any](items []T, size, page int) ([]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidPageSize, size)
	}
	if page < 1 {
		return []T{}, nil
	}
	// Compare page counts before multiplying so huge pages cannot overflow.
	if len(items) == 0 || page-1 > (len(items)-1)/size {
		return []T{}, nil
	}
	start := (page - 1) * size
	end := start + min(size, len(items)-start)
	return slices.Clone(items[start:end]), nil
}

// TotalPages is ceil(total/size); zero items make zero pages.
func TotalPages(total, size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: %d", core.ErrInvalidPageSize, size)
	}
	if total <= 0 {
		return 0, nil
	}
	return total/size + min(total%size, 1), nil
}
