package standardize

import (
	"context"
	"strings"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

type Trim struct{ Column string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	return mapStrings(f, t.Column, strings.TrimSpace)
}

// mapStrings applies fn to every non-null value of a string column and
// returns a frame holding the rewritten copy. Other kinds pass through.
func mapStrings(f *j.Frame, name string, fn func(string) string) (*j.Frame, error) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return f, nil
	}
	if _, ok := col.(*j.StringColumn); !ok {
		return f, nil
	}
	c := col.WithName(name).(*j.StringColumn)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v, _ := c.Get(i)
		c.Set(i, fn(v))
	}
	return f.With(c)
}
