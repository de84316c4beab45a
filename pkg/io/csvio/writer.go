package csvio

import (
	"encoding/csv"

	iox "github.com/wdm0006/tripjanitor/pkg/io/ioutils"
	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with headers. A .gz path is gzip
// compressed. Nulls are written as empty fields.
func WriteAll(path string, f *j.Frame, opt WriterOptions) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}

	cols := f.Columns()
	if err := w.Write(f.Schema().Names()); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for r := 0; r < f.Rows(); r++ {
		for c, col := range cols {
			row[c], _ = iox.FormatCell(col, r)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
