package parquetio

import (
	"encoding/json"
	"fmt"
	"math"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	iox "github.com/wdm0006/tripjanitor/pkg/io/ioutils"
	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

func parquetSchemaJSON(s j.Schema) (string, error) {
	// minimal JSON schema for the parquet-go JSONWriter; every field is optional
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case j.KindFloat:
			tag += "DOUBLE"
		case j.KindInt:
			tag += "INT64"
		case j.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteAll writes a Frame to a Parquet file using parquet-go JSONWriter.
// Times are stored as RFC 3339 text with nanoseconds; NaN and infinite floats become null.
func WriteAll(path string, f *j.Frame) (err error) {
	schema, err := parquetSchemaJSON(f.Schema())
	if err != nil {
		return fmt.Errorf("parquet schema: %w", err)
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	defer func() {
		if serr := writer.WriteStop(); err == nil && serr != nil {
			err = fmt.Errorf("parquet write stop: %w", serr)
		}
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()

	cols := f.Columns()
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, len(cols))
		for _, col := range cols {
			v, ok := j.Value(col, r)
			if !ok {
				continue
			}
			switch t := v.(type) {
			case float64:
				if math.IsNaN(t) || math.IsInf(t, 0) {
					continue
				}
			default:
				if col.Kind() == j.KindTime {
					v, _ = iox.FormatCell(col, r)
				}
			}
			rec[col.Name()] = v
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("parquet encode row %d: %w", r, err)
		}
		if err := writer.Write(string(line)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	return nil
}
