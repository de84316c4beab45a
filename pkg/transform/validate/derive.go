package validate

import (
	"context"
	"fmt"
	"time"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// Coerce converts Column to Kind. Values that do not convert become null and
// are passed to Report, when set.
type Coerce struct {
	Column string
	Kind   j.Kind
	Report func(column string, failed int)
}

func (t *Coerce) Name() string { return "coerce:" + t.Column }

func (t *Coerce) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	out, failed := j.Coerce(col, t.Kind)
	if out.Kind() != t.Kind {
		return nil, fmt.Errorf("coerce: cannot convert %s column %s to %s", col.Kind(), t.Column, t.Kind)
	}
	if failed > 0 && t.Report != nil {
		t.Report(t.Column, failed)
	}
	return f.With(out)
}

// Elapsed writes (End - Start) / Unit into Out. Rows where either end is null
// get a null, and so does every row when an input column is missing. Present
// inputs must already be time columns.
type Elapsed struct {
	Start, End, Out string
	Unit            time.Duration
}

func (t *Elapsed) Name() string { return "elapsed:" + t.Out }

func (t *Elapsed) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	if !f.Has(t.Start, t.End) {
		out, err := j.NullColumn(t.Out, j.KindFloat, f.Rows())
		if err != nil {
			return nil, err
		}
		return f.With(out)
	}
	start, err := timeColumn(f, t.Start)
	if err != nil {
		return nil, err
	}
	end, err := timeColumn(f, t.End)
	if err != nil {
		return nil, err
	}
	unit := t.Unit
	if unit <= 0 {
		unit = time.Minute
	}
	out := j.NewFloatColumn(t.Out, f.Rows())
	for r := 0; r < f.Rows(); r++ {
		s, okS := start.Get(r)
		e, okE := end.Get(r)
		if !okS || !okE {
			out.SetNull(r)
			continue
		}
		out.Set(r, float64(e.Sub(s))/float64(unit))
	}
	return f.With(out)
}

// Temporal keeps rows where End is not before Start, or strictly after it
// when Strict is set. Rows with a null end are dropped, as are all rows when
// either column is missing.
type Temporal struct {
	Start, End string
	Strict     bool
}

func (t *Temporal) Name() string { return "temporal" }

func (t *Temporal) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	if !f.Has(t.Start, t.End) {
		return f.Empty(), nil
	}
	start, err := timeColumn(f, t.Start)
	if err != nil {
		return nil, err
	}
	end, err := timeColumn(f, t.End)
	if err != nil {
		return nil, err
	}
	return f.Filter(func(r int) bool {
		s, okS := start.Get(r)
		e, okE := end.Get(r)
		if !okS || !okE {
			return false
		}
		if t.Strict {
			return e.After(s)
		}
		return !e.Before(s)
	}), nil
}

// Tag sets Column to Value on every row.
type Tag struct {
	Column, Value string
}

func (t *Tag) Name() string { return "tag:" + t.Column }

func (t *Tag) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	c := j.NewStringColumn(t.Column, f.Rows())
	for r := 0; r < f.Rows(); r++ {
		c.Set(r, t.Value)
	}
	return f.With(c)
}

func timeColumn(f *j.Frame, name string) (*j.TimeColumn, error) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("missing time column %s", name)
	}
	tc, ok := c.(*j.TimeColumn)
	if !ok {
		return nil, fmt.Errorf("column %s is %s, want time", name, c.Kind())
	}
	return tc, nil
}
