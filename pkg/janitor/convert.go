package janitor

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeLayouts are tried in order when a string column is coerced to time.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses s with the first matching layout in TimeLayouts. Values
// without an offset are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsFloat coerces c to a float column. Values that cannot be converted become
// null; failed counts them.
func AsFloat(c Column) (out *FloatColumn, failed int) {
	if fc, ok := c.(*FloatColumn); ok {
		return fc, 0
	}
	out = NewFloatColumn(c.Name(), c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			out.SetNull(i)
			continue
		}
		switch src := c.(type) {
		case *IntColumn:
			v, _ := src.Get(i)
			out.Set(i, float64(v))
		case *BoolColumn:
			v, _ := src.Get(i)
			if v {
				out.Set(i, 1)
			} else {
				out.Set(i, 0)
			}
		case *StringColumn:
			v, _ := src.Get(i)
			x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || math.IsNaN(x) {
				out.SetNull(i)
				failed++
				continue
			}
			out.Set(i, x)
		default:
			out.SetNull(i)
			failed++
		}
	}
	return out, failed
}

// AsInt coerces c to an int column. Floats with a fractional part do not
// convert.
func AsInt(c Column) (out *IntColumn, failed int) {
	if ic, ok := c.(*IntColumn); ok {
		return ic, 0
	}
	out = NewIntColumn(c.Name(), c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			out.SetNull(i)
			continue
		}
		switch src := c.(type) {
		case *FloatColumn:
			v, _ := src.Get(i)
			if math.IsNaN(v) || v != math.Trunc(v) {
				out.SetNull(i)
				failed++
				continue
			}
			out.Set(i, int64(v))
		case *StringColumn:
			v, _ := src.Get(i)
			s := strings.TrimSpace(v)
			if x, err := strconv.ParseInt(s, 10, 64); err == nil {
				out.Set(i, x)
				continue
			}
			x, err := strconv.ParseFloat(s, 64)
			if err != nil || x != math.Trunc(x) {
				out.SetNull(i)
				failed++
				continue
			}
			out.Set(i, int64(x))
		default:
			out.SetNull(i)
			failed++
		}
	}
	return out, failed
}

// AsTime coerces c to a time column. Strings are parsed with TimeLayouts.
// Integers are read as Unix epoch values, with the unit guessed from magnitude.
func AsTime(c Column) (out *TimeColumn, failed int) {
	if tc, ok := c.(*TimeColumn); ok {
		return tc, 0
	}
	out = NewTimeColumn(c.Name(), c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			out.SetNull(i)
			continue
		}
		switch src := c.(type) {
		case *StringColumn:
			v, _ := src.Get(i)
			t, ok := ParseTime(v)
			if !ok {
				out.SetNull(i)
				failed++
				continue
			}
			out.Set(i, t)
		case *IntColumn:
			v, _ := src.Get(i)
			out.Set(i, EpochToTime(v))
		default:
			out.SetNull(i)
			failed++
		}
	}
	return out, failed
}

// EpochToTime converts an epoch integer to UTC, picking seconds, millis,
// micros or nanos by magnitude.
func EpochToTime(v int64) time.Time {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e17:
		return time.Unix(0, v).UTC()
	case abs >= 1e14:
		return time.UnixMicro(v).UTC()
	case abs >= 1e11:
		return time.UnixMilli(v).UTC()
	default:
		return time.Unix(v, 0).UTC()
	}
}

// AsBool coerces c to a bool column. Numbers are true when non-zero; strings
// accept strconv.ParseBool forms plus Y/N.
func AsBool(c Column) (out *BoolColumn, failed int) {
	if bc, ok := c.(*BoolColumn); ok {
		return bc, 0
	}
	out = NewBoolColumn(c.Name(), c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			out.SetNull(i)
			continue
		}
		switch src := c.(type) {
		case *IntColumn:
			v, _ := src.Get(i)
			out.Set(i, v != 0)
		case *FloatColumn:
			v, _ := src.Get(i)
			out.Set(i, v != 0)
		case *StringColumn:
			v, _ := src.Get(i)
			switch s := strings.ToLower(strings.TrimSpace(v)); s {
			case "y", "yes":
				out.Set(i, true)
			case "n", "no":
				out.Set(i, false)
			default:
				b, err := strconv.ParseBool(s)
				if err != nil {
					out.SetNull(i)
					failed++
					continue
				}
				out.Set(i, b)
			}
		default:
			out.SetNull(i)
			failed++
		}
	}
	return out, failed
}

// Coerce converts c to kind k using the As* helpers.
func Coerce(c Column, k Kind) (Column, int) {
	switch k {
	case KindFloat:
		return AsFloat(c)
	case KindInt:
		return AsInt(c)
	case KindTime:
		return AsTime(c)
	case KindBool:
		return AsBool(c)
	}
	return c, 0
}

// InferTimes returns f with every string column whose non-null values all
// parse as timestamps converted to a time column. Text formats and the
// parquet writer store times as RFC 3339 strings; this restores them.
func InferTimes(f *Frame) *Frame {
	out := f
	for _, c := range f.Columns() {
		sc, ok := c.(*StringColumn)
		if !ok || !allTimes(sc) {
			continue
		}
		tc, _ := AsTime(sc)
		if next, err := out.With(tc); err == nil {
			out = next
		}
	}
	return out
}

func allTimes(c *StringColumn) bool {
	seen := false
	for i := 0; i < c.Len(); i++ {
		v, ok := c.Get(i)
		if !ok {
			continue
		}
		if _, ok := ParseTime(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}
