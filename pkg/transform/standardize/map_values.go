package standardize

import (
	"context"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// MapValues replaces values found in Map; others are kept as they are.
type MapValues struct {
	Column string
	Map    map[string]string
}

func (t *MapValues) Name() string { return "map_values" }

func (t *MapValues) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	return mapStrings(f, t.Column, func(v string) string {
		if nv, ok := t.Map[v]; ok {
			return nv
		}
		return v
	})
}
