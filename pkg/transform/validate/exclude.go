package validate

import (
	"context"
	"fmt"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// ExcludeIn drops rows whose integer Column value is in Values.
type ExcludeIn struct {
	Column string
	Values map[int64]struct{}
}

func NewExcludeIn(col string, vals []int64) *ExcludeIn {
	m := make(map[int64]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return &ExcludeIn{Column: col, Values: m}
}

func (t *ExcludeIn) Name() string { return "exclude_in:" + t.Column }

func (t *ExcludeIn) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	if len(t.Values) == 0 {
		return f, nil
	}
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	ic, ok := col.(*j.IntColumn)
	if !ok {
		return nil, fmt.Errorf("exclude_in: column %s is %s, want int", t.Column, col.Kind())
	}
	return f.Filter(func(r int) bool {
		v, ok := ic.Get(r)
		if !ok {
			return true
		}
		_, bad := t.Values[v]
		return !bad
	}), nil
}
