package janitor

import (
	"fmt"
	"time"
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	AppendNull()
	// Take returns a new column holding the rows at idx, in that order.
	// Negative indexes produce nulls.
	Take(idx []int) Column
	// WithName returns a copy of the column under a new name.
	WithName(name string) Column
}

// Vector is the storage behind every column kind.
type Vector[T any] struct {
	name  string
	kind  Kind
	data  []T
	nulls []bool
}

type (
	BoolColumn   = Vector[bool]
	IntColumn    = Vector[int64]
	FloatColumn  = Vector[float64]
	StringColumn = Vector[string]
	TimeColumn   = Vector[time.Time]
)

func newVector[T any](name string, kind Kind, n int) *Vector[T] {
	return &Vector[T]{name: name, kind: kind, data: make([]T, n), nulls: make([]bool, n)}
}

func NewBoolColumn(name string, n int) *BoolColumn     { return newVector[bool](name, KindBool, n) }
func NewIntColumn(name string, n int) *IntColumn       { return newVector[int64](name, KindInt, n) }
func NewFloatColumn(name string, n int) *FloatColumn   { return newVector[float64](name, KindFloat, n) }
func NewStringColumn(name string, n int) *StringColumn { return newVector[string](name, KindString, n) }
func NewTimeColumn(name string, n int) *TimeColumn     { return newVector[time.Time](name, KindTime, n) }

// NewColumn builds an empty column of the given kind.
func NewColumn(name string, k Kind, n int) (Column, error) {
	switch k {
	case KindBool:
		return NewBoolColumn(name, n), nil
	case KindInt:
		return NewIntColumn(name, n), nil
	case KindFloat:
		return NewFloatColumn(name, n), nil
	case KindString:
		return NewStringColumn(name, n), nil
	case KindTime:
		return NewTimeColumn(name, n), nil
	}
	return nil, fmt.Errorf("invalid column kind %d for %s", k, name)
}

// NullColumn returns a column of n nulls.
func NullColumn(name string, k Kind, n int) (Column, error) {
	c, err := NewColumn(name, k, 0)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		c.AppendNull()
	}
	return c, nil
}

func (c *Vector[T]) Name() string      { return c.name }
func (c *Vector[T]) Kind() Kind        { return c.kind }
func (c *Vector[T]) Len() int          { return len(c.data) }
func (c *Vector[T]) IsNull(i int) bool { return c.nulls[i] }
func (c *Vector[T]) SetNull(i int)     { c.nulls[i] = true }
func (c *Vector[T]) Get(i int) (T, bool) {
	return c.data[i], !c.nulls[i]
}
func (c *Vector[T]) Set(i int, v T) { c.data[i] = v; c.nulls[i] = false }
func (c *Vector[T]) Append(v T) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}
func (c *Vector[T]) AppendNull() {
	var zero T
	c.data = append(c.data, zero)
	c.nulls = append(c.nulls, true)
}

// Take gathers the rows at idx. A negative index yields a null.
func (c *Vector[T]) Take(idx []int) Column {
	out := &Vector[T]{name: c.name, kind: c.kind, data: make([]T, len(idx)), nulls: make([]bool, len(idx))}
	for i, src := range idx {
		if src < 0 {
			out.nulls[i] = true
			continue
		}
		out.data[i] = c.data[src]
		out.nulls[i] = c.nulls[src]
	}
	return out
}

func (c *Vector[T]) WithName(name string) Column {
	out := &Vector[T]{name: name, kind: c.kind, data: make([]T, len(c.data)), nulls: make([]bool, len(c.nulls))}
	copy(out.data, c.data)
	copy(out.nulls, c.nulls)
	return out
}

// Frame is a columnar container for tabular data.
type Frame struct {
	cols  []Column
	index map[string]int // name -> col index
	nrows int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		c, err := NewColumn(cs.Name, cs.Type, 0)
		if err != nil {
			panic(err)
		}
		f.cols[i] = c
		f.index[cs.Name] = i
	}
	return f
}

// FromColumns assembles a frame from equally sized columns with unique names.
func FromColumns(cols ...Column) (*Frame, error) {
	f := &Frame{cols: make([]Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			f.nrows = c.Len()
		} else if c.Len() != f.nrows {
			return nil, fmt.Errorf("column %s has %d rows, want %d", c.Name(), c.Len(), f.nrows)
		}
		if _, dup := f.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column %s", c.Name())
		}
		f.index[c.Name()] = len(f.cols)
		f.cols = append(f.cols, c)
	}
	return f, nil
}

func (f *Frame) Schema() Schema {
	s := Schema{Columns: make([]ColumnSchema, len(f.cols))}
	for i, c := range f.cols {
		s.Columns[i] = ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: true}
	}
	return s
}

func (f *Frame) Rows() int         { return f.nrows }
func (f *Frame) Cols() int         { return len(f.cols) }
func (f *Frame) Columns() []Column { return append([]Column(nil), f.cols...) }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Has reports whether every named column exists.
func (f *Frame) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := f.index[n]; !ok {
			return false
		}
	}
	return true
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.AppendNull()
	}
	f.nrows++
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	c := f.cols[i]
	if v == nil {
		c.SetNull(row)
		return nil
	}
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int32:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int32:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time", name)
		}
		col.Set(row, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}

// Empty returns a zero-row frame with the same schema.
func (f *Frame) Empty() *Frame { return f.Take(nil) }

// Take returns a new frame holding the rows at idx, in that order.
func (f *Frame) Take(idx []int) *Frame {
	out := &Frame{cols: make([]Column, len(f.cols)), index: make(map[string]int, len(f.cols)), nrows: len(idx)}
	for i, c := range f.cols {
		out.cols[i] = c.Take(idx)
		out.index[c.Name()] = i
	}
	return out
}

// Filter returns a new frame with the rows for which keep reports true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	idx := make([]int, 0, f.nrows)
	for r := 0; r < f.nrows; r++ {
		if keep(r) {
			idx = append(idx, r)
		}
	}
	return f.Take(idx)
}

// Select returns a new frame with only the named columns that exist, in the
// order given. A repeated name is taken once.
func (f *Frame) Select(names ...string) *Frame {
	cols := make([]Column, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		if c, ok := f.ColumnByName(n); ok {
			seen[n] = true
			cols = append(cols, c)
		}
	}
	out, _ := FromColumns(cols...)
	out.nrows = f.nrows
	return out
}

// Drop returns a new frame without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	keep := make([]string, 0, len(f.cols))
	for _, c := range f.cols {
		if _, ok := skip[c.Name()]; !ok {
			keep = append(keep, c.Name())
		}
	}
	return f.Select(keep...)
}

// With returns a new frame where c replaces the column of the same name, or
// is appended when no such column exists.
func (f *Frame) With(c Column) (*Frame, error) {
	if c.Len() != f.nrows && len(f.cols) > 0 {
		return nil, fmt.Errorf("column %s has %d rows, want %d", c.Name(), c.Len(), f.nrows)
	}
	cols := f.Columns()
	if i, ok := f.index[c.Name()]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return FromColumns(cols...)
}

// RowHasNull reports whether any of the named columns is null at row.
// Missing columns count as null.
func (f *Frame) RowHasNull(row int, names ...string) bool {
	for _, n := range names {
		c, ok := f.ColumnByName(n)
		if !ok || c.IsNull(row) {
			return true
		}
	}
	return false
}

// FromRecords builds a frame with schema s from row maps. Keys missing from a
// record, or holding nil, become null.
func FromRecords(s Schema, recs []map[string]any) (*Frame, error) {
	f := NewFrame(s)
	for _, rec := range recs {
		f.AppendNullRow()
		row := f.Rows() - 1
		for _, cs := range s.Columns {
			if err := f.SetCell(row, cs.Name, rec[cs.Name]); err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
		}
	}
	return f, nil
}

// Value returns the cell at row r as a plain Go value, or false when it is
// null.
func Value(c Column, r int) (any, bool) {
	if c.IsNull(r) {
		return nil, false
	}
	switch col := c.(type) {
	case *BoolColumn:
		v, _ := col.Get(r)
		return v, true
	case *IntColumn:
		v, _ := col.Get(r)
		return v, true
	case *FloatColumn:
		v, _ := col.Get(r)
		return v, true
	case *StringColumn:
		v, _ := col.Get(r)
		return v, true
	case *TimeColumn:
		v, _ := col.Get(r)
		return v, true
	}
	return nil, false
}
