package jsonlio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	iox "github.com/wdm0006/tripjanitor/pkg/io/ioutils"
	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

type ReaderOptions struct {
	SampleRows int
}

type Reader struct {
	rc   io.Closer
	dec  *json.Decoder
	opt  ReaderOptions
	buf  []map[string]any
	keys []string
}

// Open opens a JSON lines file, gzip or plain.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return &Reader{rc: rc, dec: json.NewDecoder(bufio.NewReader(rc)), opt: opt}, nil
}

func (r *Reader) Close() error { return r.rc.Close() }

// InferSchema samples records to find the columns and their kinds. Columns
// are ordered by name since JSON objects carry no column order.
func (r *Reader) InferSchema() (j.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	votes := map[string]*iox.KindVote{}
	for len(r.buf) < max {
		var m map[string]any
		if err := r.dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return j.Schema{}, err
		}
		r.buf = append(r.buf, m)
		for k, v := range m {
			kv, ok := votes[k]
			if !ok {
				kv = &iox.KindVote{}
				votes[k] = kv
			}
			kv.Value(v)
		}
	}
	r.keys = make([]string, 0, len(votes))
	for k := range votes {
		r.keys = append(r.keys, k)
	}
	sort.Strings(r.keys)
	schema := j.Schema{Columns: make([]j.ColumnSchema, len(r.keys))}
	for i, k := range r.keys {
		schema.Columns[i] = j.ColumnSchema{Name: k, Type: votes[k].Kind(), Nullable: true}
	}
	return schema, nil
}

func (r *Reader) ReadAll(schema j.Schema) (*j.Frame, error) {
	f := j.NewFrame(schema)
	for _, m := range r.buf {
		setRowFromMap(f, schema, m)
	}
	r.buf = nil
	for {
		var m map[string]any
		if err := r.dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("jsonl row %d: %w", f.Rows()+1, err)
		}
		setRowFromMap(f, schema, m)
	}
	return f, nil
}

func setRowFromMap(f *j.Frame, schema j.Schema, m map[string]any) {
	f.AppendNullRow()
	row := f.Rows() - 1
	for _, cs := range schema.Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if x, ok := iox.ParseCell(cs.Type, t); ok {
				_ = f.SetCell(row, cs.Name, x)
			}
		case float64:
			switch cs.Type {
			case j.KindInt, j.KindFloat:
				_ = f.SetCell(row, cs.Name, t)
			case j.KindTime:
				_ = f.SetCell(row, cs.Name, j.EpochToTime(int64(t)))
			case j.KindString:
				_ = f.SetCell(row, cs.Name, fmt.Sprint(t))
			}
		case bool:
			switch cs.Type {
			case j.KindBool:
				_ = f.SetCell(row, cs.Name, t)
			case j.KindString:
				_ = f.SetCell(row, cs.Name, fmt.Sprint(t))
			}
		default:
			if cs.Type == j.KindString {
				// nested values are kept as their JSON text
				b, _ := json.Marshal(t)
				_ = f.SetCell(row, cs.Name, strings.TrimSpace(string(b)))
			}
		}
	}
}

// ReadFile opens path, infers its schema and reads it whole.
func ReadFile(path string) (*j.Frame, error) {
	r, err := Open(path, ReaderOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, fmt.Errorf("jsonl schema %s: %w", path, err)
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return nil, fmt.Errorf("jsonl read %s: %w", path, err)
	}
	return f, nil
}
