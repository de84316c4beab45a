package validate

import (
	"context"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// DropNulls drops rows holding a null in any of Columns. With no Columns it
// checks every column of the frame. Listed columns that are missing count as
// null, so a frame lacking a required column comes out empty.
type DropNulls struct {
	Label   string
	Columns []string
}

func (t *DropNulls) Name() string {
	if t.Label != "" {
		return "drop_nulls:" + t.Label
	}
	return "drop_nulls"
}

func (t *DropNulls) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	cols := t.Columns
	if len(cols) == 0 {
		cols = f.Schema().Names()
	}
	return f.Filter(func(r int) bool { return !f.RowHasNull(r, cols...) }), nil
}
