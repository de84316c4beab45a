package jsonlio

import (
	"encoding/json"

	iox "github.com/wdm0006/tripjanitor/pkg/io/ioutils"
	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// WriteAll writes one JSON object per row. Null cells are omitted and times
// are written as RFC 3339 text.
func WriteAll(path string, f *j.Frame) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	enc := json.NewEncoder(out)
	cols := f.Columns()
	for r := 0; r < f.Rows(); r++ {
		m := make(map[string]any, len(cols))
		for _, col := range cols {
			v, ok := j.Value(col, r)
			if !ok {
				continue
			}
			if col.Kind() == j.KindTime {
				v, _ = iox.FormatCell(col, r)
			}
			m[col.Name()] = v
		}
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}
