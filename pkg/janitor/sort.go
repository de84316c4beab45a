package janitor

import (
	"fmt"
	"sort"
)

// SortStable returns a new frame with rows ordered by less. Rows that compare
// equal keep their relative order.
func (f *Frame) SortStable(less func(a, b int) bool) *Frame {
	idx := make([]int, f.nrows)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return less(idx[i], idx[j]) })
	return f.Take(idx)
}

// SortByTime stably sorts ascending on a time column. Nulls sort last.
func (f *Frame) SortByTime(name string) (*Frame, error) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("sort: unknown column %s", name)
	}
	tc, ok := c.(*TimeColumn)
	if !ok {
		return nil, fmt.Errorf("sort: column %s is %s, want time", name, c.Kind())
	}
	return f.SortStable(func(a, b int) bool {
		ta, okA := tc.Get(a)
		tb, okB := tc.Get(b)
		switch {
		case !okA:
			return false
		case !okB:
			return true
		}
		return ta.Before(tb)
	}), nil
}
