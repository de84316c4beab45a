// Package profile summarizes the columns of trip tables: counts, nulls,
// numeric ranges, time spans and the most frequent strings. A Collector may
// consume several frames, e.g. every month of one service.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	iox "github.com/wdm0006/tripjanitor/pkg/io/ioutils"
	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

func (s *NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type TimeStats struct {
	Count int       `json:"count"`
	Nulls int       `json:"nulls"`
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

type StringStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind j.Kind
	Num  *NumStats
	Bool *BoolStats
	Time *TimeStats
	Str  *StringStats
}

// Freq is one distinct string value and how often it occurred.
type Freq struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
	rows  int
}

// NewCollector prepares profiles for the columns of schema, in order. Columns
// first seen in a later frame are appended. topK bounds the reported string
// frequencies; 0 disables them.
func NewCollector(schema j.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	for _, cs := range schema.Columns {
		c.column(cs.Name, cs.Type)
	}
	return c
}

func (c *Collector) column(name string, k j.Kind) *ColumnProfile {
	if i, ok := c.index[name]; ok {
		return &c.cols[i]
	}
	cp := ColumnProfile{Name: name, Kind: k}
	switch k {
	case j.KindFloat, j.KindInt:
		cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
	case j.KindBool:
		cp.Bool = &BoolStats{}
	case j.KindTime:
		cp.Time = &TimeStats{}
	default:
		cp.Str = &StringStats{Freqs: make(map[string]int)}
	}
	c.index[name] = len(c.cols)
	c.cols = append(c.cols, cp)
	return &c.cols[len(c.cols)-1]
}

// Rows is the number of rows consumed so far.
func (c *Collector) Rows() int { return c.rows }

// Columns returns the profiles in column order.
func (c *Collector) Columns() []ColumnProfile { return append([]ColumnProfile(nil), c.cols...) }

func (c *Collector) ConsumeFrame(f *j.Frame) {
	c.rows += f.Rows()
	for _, col := range f.Columns() {
		cp := c.column(col.Name(), col.Kind())
		for r := 0; r < col.Len(); r++ {
			v, ok := j.Value(col, r)
			cp.add(v, ok, c.topK > 0)
		}
	}
}

// add folds one cell into the profile. A value whose kind differs from the
// profile's (a column that changed type between files) counts as its text.
func (cp *ColumnProfile) add(v any, ok, freqs bool) {
	switch {
	case cp.Num != nil:
		if !ok {
			cp.Num.Nulls++
			return
		}
		var x float64
		switch t := v.(type) {
		case float64:
			x = t
		case int64:
			x = float64(t)
		default:
			cp.Num.Nulls++
			return
		}
		cp.Num.Count++
		cp.Num.Min = math.Min(cp.Num.Min, x)
		cp.Num.Max = math.Max(cp.Num.Max, x)
		cp.Num.Sum += x
	case cp.Bool != nil:
		b, isBool := v.(bool)
		if !ok || !isBool {
			cp.Bool.Nulls++
			return
		}
		cp.Bool.Count++
		if b {
			cp.Bool.True++
		} else {
			cp.Bool.False++
		}
	case cp.Time != nil:
		t, isTime := v.(time.Time)
		if !ok || !isTime {
			cp.Time.Nulls++
			return
		}
		if cp.Time.Count == 0 || t.Before(cp.Time.First) {
			cp.Time.First = t
		}
		if cp.Time.Count == 0 || t.After(cp.Time.Last) {
			cp.Time.Last = t
		}
		cp.Time.Count++
	default:
		if !ok {
			cp.Str.Nulls++
			return
		}
		cp.Str.Count++
		if freqs {
			cp.Str.Freqs[fmt.Sprint(v)]++
		}
	}
}

// Top returns up to n of the most frequent values of a string column,
// ties broken by value.
func (s *StringStats) Top(n int) []Freq {
	out := make([]Freq, 0, len(s.Freqs))
	for k, v := range s.Freqs {
		out = append(out, Freq{Value: k, Count: v})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Value < out[b].Value
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile Summary (%d rows)\n", c.rows)
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			if cp.Num.Count == 0 {
				fmt.Fprintf(&b, "count=0 nulls=%d\n", cp.Num.Nulls)
				continue
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n",
				cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		case cp.Time != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d", cp.Time.Count, cp.Time.Nulls)
			if cp.Time.Count > 0 {
				fmt.Fprintf(&b, " first=%s last=%s", iox.FormatTime(cp.Time.First), iox.FormatTime(cp.Time.Last))
			}
			b.WriteString("\n")
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Str.Count, cp.Str.Nulls)
			for _, fq := range cp.Str.Top(c.topK) {
				fmt.Fprintf(&b, "  * %q: %d\n", fq.Value, fq.Count)
			}
		}
	}
	return b.String()
}

type JSONProfile struct {
	Rows    int          `json:"rows"`
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string     `json:"name"`
	Kind string     `json:"kind"`
	Num  *NumStats  `json:"num,omitempty"`
	Bool *BoolStats `json:"bool,omitempty"`
	Time *TimeStats `json:"time,omitempty"`
	Str  *JSONStr   `json:"str,omitempty"`
}

type JSONStr struct {
	Count int    `json:"count"`
	Nulls int    `json:"nulls"`
	Top   []Freq `json:"top,omitempty"`
}

// ReportJSON returns the profile in a form ready for encoding/json. Numeric
// columns without values report a zero range instead of infinities.
func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Rows: c.rows, Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String()}
		switch {
		case cp.Num != nil:
			n := *cp.Num
			if n.Count == 0 {
				n.Min, n.Max = 0, 0
			}
			jc.Num = &n
		case cp.Bool != nil:
			jc.Bool = cp.Bool
		case cp.Time != nil:
			jc.Time = cp.Time
		default:
			jc.Str = &JSONStr{Count: cp.Str.Count, Nulls: cp.Str.Nulls}
			if c.topK > 0 {
				jc.Str.Top = cp.Str.Top(c.topK)
			}
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}
