package validate

import (
	"context"
	"fmt"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// Range keeps the rows whose Column value lies inside Bound. Null values are
// dropped unless KeepNull is set. A missing column leaves the frame as is.
type Range struct {
	Column   string
	Bound    Bound
	KeepNull bool
}

func (t *Range) Name() string { return "filter_range:" + t.Column }

func (t *Range) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	switch col.Kind() {
	case j.KindFloat, j.KindInt:
	default:
		return nil, fmt.Errorf("filter_range: column %s is %s, want numeric", t.Column, col.Kind())
	}
	c, _ := j.AsFloat(col)
	return f.Filter(func(r int) bool {
		v, ok := c.Get(r)
		if !ok {
			return t.KeepNull
		}
		return t.Bound.Contains(v)
	}), nil
}
