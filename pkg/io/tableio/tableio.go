// Package tableio reads and writes frames in the format named by a file's
// extension: .parquet, .csv and .jsonl/.ndjson, the text formats optionally
// gzip compressed.
package tableio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wdm0006/tripjanitor/pkg/io/csvio"
	iox "github.com/wdm0006/tripjanitor/pkg/io/ioutils"
	"github.com/wdm0006/tripjanitor/pkg/io/jsonlio"
	"github.com/wdm0006/tripjanitor/pkg/io/parquetio"
	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// ErrUnsupportedFormat is returned for an extension with no reader or writer.
var ErrUnsupportedFormat = errors.New("unsupported table format")

type Format int

const (
	Unknown Format = iota
	Parquet
	CSV
	JSONL
)

func (f Format) String() string {
	switch f {
	case Parquet:
		return "parquet"
	case CSV:
		return "csv"
	case JSONL:
		return "jsonl"
	}
	return "unknown"
}

// FormatOf picks the format from the path extension.
func FormatOf(path string) Format {
	switch filepath.Ext(iox.TrimCompression(path)) {
	case ".parquet", ".pq":
		return Parquet
	case ".csv", ".tsv", ".txt":
		return CSV
	case ".jsonl", ".ndjson", ".json":
		return JSONL
	}
	return Unknown
}

// Read loads the whole table at path.
func Read(path string) (*j.Frame, error) {
	var (
		f   *j.Frame
		err error
	)
	switch FormatOf(path) {
	case Parquet:
		f, err = parquetio.ReadFile(path)
	case CSV:
		f, err = csvio.ReadFile(path)
	case JSONL:
		f, err = jsonlio.ReadFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

// Write stores f at path. The table goes to a temporary file in the same
// directory first and is renamed into place, so readers never see a partial
// table and a failed write leaves any previous file untouched.
func Write(path string, f *j.Frame) error {
	format := FormatOf(path)
	if format == Unknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(base, filepath.Ext(base))+".*"+ext(path))
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	switch format {
	case Parquet:
		err = parquetio.WriteAll(tmpPath, f)
	case CSV:
		err = csvio.WriteAll(tmpPath, f, csvio.WriterOptions{})
	case JSONL:
		err = jsonlio.WriteAll(tmpPath, f)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// ext returns the format extension plus any compression suffix, e.g. ".csv.gz".
func ext(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".gz") {
		return filepath.Ext(strings.TrimSuffix(lower, ".gz")) + ".gz"
	}
	return filepath.Ext(lower)
}
