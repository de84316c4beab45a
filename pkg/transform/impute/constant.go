package impute

import (
	"context"
	"fmt"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// Constant fills the nulls of Column with Value. The column is copied; the
// input frame is left untouched. A missing column is not an error.
type Constant struct {
	Column string
	// use any; will be coerced per column kind
	Value any
}

func (t *Constant) Name() string { return "impute_constant" }

func (t *Constant) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	out := col.WithName(t.Column)
	switch c := out.(type) {
	case *j.FloatColumn:
		var vv float64
		switch v := t.Value.(type) {
		case int:
			vv = float64(v)
		case int64:
			vv = float64(v)
		case float64:
			vv = v
		default:
			return nil, fmt.Errorf("impute_constant: %T does not fit float column %s", t.Value, t.Column)
		}
		fill(c, vv)
	case *j.IntColumn:
		var vv int64
		switch v := t.Value.(type) {
		case int:
			vv = int64(v)
		case int64:
			vv = v
		case float64:
			vv = int64(v)
		default:
			return nil, fmt.Errorf("impute_constant: %T does not fit int column %s", t.Value, t.Column)
		}
		fill(c, vv)
	case *j.StringColumn:
		vv, _ := t.Value.(string)
		fill(c, vv)
	case *j.BoolColumn:
		vv, _ := t.Value.(bool)
		fill(c, vv)
	default:
		return f, nil
	}
	return f.With(out)
}

func fill[T any](c *j.Vector[T], v T) {
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			c.Set(i, v)
		}
	}
}
