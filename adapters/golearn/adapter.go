// Package golearn hands cleaned or enriched trips to
// github.com/sjwhitworth/golearn as DenseInstances, and reads them back.
package golearn

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// Missing is the category stored for null strings. Null numbers become NaN.
const Missing = "NA"

// HourSuffix names the attribute derived from a time column: start_time
// becomes start_time_hour, the hour of day in [0, 24).
const HourSuffix = "_hour"

type Options struct {
	// Columns restricts and orders the attributes; empty takes every column.
	Columns []string
	// Class, when set, names the class attribute.
	Class string
}

// ToDenseInstances converts f. Ints, floats and bools (as 0/1) become float
// attributes, strings categorical ones, and times their hour of day.
func ToDenseInstances(f *j.Frame, opt Options) (*base.DenseInstances, error) {
	cols := f.Columns()
	if len(opt.Columns) > 0 {
		cols = cols[:0]
		for _, name := range opt.Columns {
			c, ok := f.ColumnByName(name)
			if !ok {
				return nil, fmt.Errorf("golearn: no column %s", name)
			}
			cols = append(cols, c)
		}
	}

	attrs := make([]base.Attribute, len(cols))
	for i, c := range cols {
		switch c.Kind() {
		case j.KindString:
			ca := new(base.CategoricalAttribute)
			ca.SetName(c.Name())
			attrs[i] = ca
		case j.KindTime:
			attrs[i] = base.NewFloatAttribute(c.Name() + HourSuffix)
		default:
			attrs[i] = base.NewFloatAttribute(c.Name())
		}
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for c, col := range cols {
		for r := 0; r < f.Rows(); r++ {
			v, ok := j.Value(col, r)
			if col.Kind() == j.KindString {
				s := Missing
				if ok {
					s = v.(string)
				}
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(s))
				continue
			}
			inst.Set(specs[c], r, base.PackFloatToBytes(toFloat(v, ok)))
		}
	}

	if opt.Class != "" {
		for _, a := range attrs {
			if a.GetName() == opt.Class {
				if err := inst.AddClassAttribute(a); err != nil {
					return nil, err
				}
				return inst, nil
			}
		}
		return nil, fmt.Errorf("golearn: class %s is not an attribute", opt.Class)
	}
	return inst, nil
}

func toFloat(v any, ok bool) float64 {
	if !ok {
		return math.NaN()
	}
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case interface{ Hour() int }:
		return float64(t.Hour())
	}
	return math.NaN()
}

// FromDenseInstances converts inst into a frame of float and string columns.
// NaN floats and Missing categories come back as nulls.
func FromDenseInstances(inst *base.DenseInstances) (*j.Frame, error) {
	attrs := inst.AllAttributes()
	schema := j.Schema{Columns: make([]j.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := j.KindString
		if _, ok := a.(*base.FloatAttribute); ok {
			k = j.KindFloat
		}
		schema.Columns[i] = j.ColumnSchema{Name: a.GetName(), Type: k, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}

	f := j.NewFrame(schema)
	_, rows := inst.Size()
	for r := 0; r < rows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			raw := inst.Get(specs[c], r)
			if cs.Type == j.KindFloat {
				if v := base.UnpackBytesToFloat(raw); !math.IsNaN(v) {
					_ = f.SetCell(r, cs.Name, v)
				}
				continue
			}
			if s := specs[c].GetAttribute().GetStringFromSysVal(raw); s != Missing {
				_ = f.SetCell(r, cs.Name, s)
			}
		}
	}
	return f, nil
}
