package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	parquet "github.com/segmentio/parquet-go"
	"github.com/segmentio/parquet-go/deprecated"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// Reader loads a flat parquet file into a Frame. Column kinds come from the
// physical and logical types in the file footer; repeated columns are skipped.
type Reader struct {
	file   *os.File
	reader *parquet.Reader
	schema j.Schema
	// leaf column index -> schema position, -1 when skipped
	leaves []int
	times  []timeUnit
}

type timeUnit int

const (
	notTime timeUnit = iota
	unitMillis
	unitMicros
	unitNanos
	unitDays
	unitInt96
)

func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("parquet open %s: %w", path, err)
	}
	r := &Reader{file: f, reader: parquet.NewReader(pf)}
	r.inferSchema(pf.Schema())
	return r, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() j.Schema { return r.schema }

func (r *Reader) inferSchema(s *parquet.Schema) {
	paths := s.Columns()
	r.leaves = make([]int, len(paths))
	for i := range r.leaves {
		r.leaves[i] = -1
	}
	for _, path := range paths {
		leaf, ok := s.Lookup(path...)
		if !ok || leaf.MaxRepetitionLevel > 0 {
			continue
		}
		kind, unit := kindOf(leaf.Node.Type())
		if kind == j.KindInvalid {
			continue
		}
		r.leaves[leaf.ColumnIndex] = len(r.schema.Columns)
		r.times = append(r.times, unit)
		r.schema.Columns = append(r.schema.Columns, j.ColumnSchema{
			Name:     strings.Join(path, "."),
			Type:     kind,
			Nullable: leaf.MaxDefinitionLevel > 0,
		})
	}
}

func kindOf(t parquet.Type) (j.Kind, timeUnit) {
	if lt := t.LogicalType(); lt != nil {
		switch {
		case lt.Timestamp != nil:
			switch {
			case lt.Timestamp.Unit.Millis != nil:
				return j.KindTime, unitMillis
			case lt.Timestamp.Unit.Nanos != nil:
				return j.KindTime, unitNanos
			default:
				return j.KindTime, unitMicros
			}
		case lt.Date != nil:
			return j.KindTime, unitDays
		}
	}
	if ct := t.ConvertedType(); ct != nil {
		switch *ct {
		case deprecated.TimestampMillis:
			return j.KindTime, unitMillis
		case deprecated.TimestampMicros:
			return j.KindTime, unitMicros
		case deprecated.Date:
			return j.KindTime, unitDays
		}
	}
	switch t.Kind() {
	case parquet.Boolean:
		return j.KindBool, notTime
	case parquet.Int32, parquet.Int64:
		return j.KindInt, notTime
	case parquet.Int96:
		return j.KindTime, unitInt96
	case parquet.Float, parquet.Double:
		return j.KindFloat, notTime
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return j.KindString, notTime
	}
	return j.KindInvalid, notTime
}

// ReadAll reads every remaining row. String columns holding only timestamps
// are returned as time columns.
func (r *Reader) ReadAll() (*j.Frame, error) {
	f := j.NewFrame(r.schema)
	buf := make([]parquet.Row, 1024)
	for {
		n, err := r.reader.ReadRows(buf)
		for i := 0; i < n; i++ {
			f.AppendNullRow()
			r.setRow(f, f.Rows()-1, buf[i])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parquet read: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return j.InferTimes(f), nil
}

func (r *Reader) setRow(f *j.Frame, row int, values parquet.Row) {
	for _, v := range values {
		if v.IsNull() || v.Column() < 0 || v.Column() >= len(r.leaves) {
			continue
		}
		pos := r.leaves[v.Column()]
		if pos < 0 {
			continue
		}
		name := r.schema.Columns[pos].Name
		switch r.schema.Columns[pos].Type {
		case j.KindBool:
			_ = f.SetCell(row, name, v.Boolean())
		case j.KindInt:
			if v.Kind() == parquet.Int32 {
				_ = f.SetCell(row, name, int64(v.Int32()))
			} else {
				_ = f.SetCell(row, name, v.Int64())
			}
		case j.KindFloat:
			if v.Kind() == parquet.Float {
				_ = f.SetCell(row, name, float64(v.Float()))
			} else {
				_ = f.SetCell(row, name, v.Double())
			}
		case j.KindString:
			_ = f.SetCell(row, name, string(v.ByteArray()))
		case j.KindTime:
			_ = f.SetCell(row, name, toTime(v, r.times[pos]))
		}
	}
}

// julianUnixEpoch is the Julian day number of 1970-01-01.
const julianUnixEpoch = 2440588

func toTime(v parquet.Value, unit timeUnit) time.Time {
	switch unit {
	case unitInt96:
		i96 := v.Int96()
		nanos := int64(uint64(i96[1])<<32 | uint64(i96[0]))
		days := int64(i96[2]) - julianUnixEpoch
		return time.Unix(days*86400, nanos).UTC()
	case unitDays:
		return time.Unix(int64(v.Int32())*86400, 0).UTC()
	}
	var n int64
	if v.Kind() == parquet.Int32 {
		n = int64(v.Int32())
	} else {
		n = v.Int64()
	}
	switch unit {
	case unitMillis:
		return time.UnixMilli(n).UTC()
	case unitNanos:
		return time.Unix(0, n).UTC()
	}
	return time.UnixMicro(n).UTC()
}

// ReadFile opens path and reads it whole.
func ReadFile(path string) (*j.Frame, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadAll()
}
