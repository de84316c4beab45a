package csvio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

func TestInferAndRead(t *testing.T) {
	p := writeZones(t, 3)
	fr, err := ReadFile(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"LocationID", "Borough", "Zone", "service_zone"}, fr.Schema().Names())
	assert.Equal(t, 3, fr.Rows())
	id, _ := fr.ColumnByName("LocationID")
	assert.Equal(t, j.KindInt, id.Kind())
}

func TestSniffAndTimes(t *testing.T) {
	body := "\ufeffhour;borough;temp_c;rain\n" +
		"2024-01-01 08:00:00;Manhattan;3.5;0.0\n" +
		"2024-01-01 09:00:00;Manhattan;;0.4\n"
	p := filepath.Join(t.TempDir(), "weather.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	fr, err := ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, []string{"hour", "borough", "temp_c", "rain"}, fr.Schema().Names())

	h, _ := fr.ColumnByName("hour")
	require.Equal(t, j.KindTime, h.Kind())
	v, _ := h.(*j.TimeColumn).Get(1)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), v)

	temp, _ := fr.ColumnByName("temp_c")
	assert.Equal(t, j.KindFloat, temp.Kind())
	assert.True(t, temp.IsNull(1))
}

func TestWriteRoundTripGzip(t *testing.T) {
	ts := j.NewTimeColumn("t", 0)
	ts.Append(time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC))
	ts.AppendNull()
	names := j.NewStringColumn("name", 0)
	names.Append("JFK Airport")
	names.Append("a, quoted \"name\"")
	f, err := j.FromColumns(ts, names)
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "out.csv.gz")
	require.NoError(t, WriteAll(p, f, WriterOptions{}))

	back, err := ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, 2, back.Rows())
	c, _ := back.ColumnByName("name")
	v, _ := c.(*j.StringColumn).Get(1)
	assert.Equal(t, "a, quoted \"name\"", v)
	tc, _ := back.ColumnByName("t")
	assert.Equal(t, j.KindTime, tc.Kind())
	assert.True(t, tc.IsNull(1))
}

func TestStrictShortRecord(t *testing.T) {
	p := filepath.Join(t.TempDir(), "short.csv")
	require.NoError(t, os.WriteFile(p, []byte("a,b\n1,2\n3\n"), 0o644))

	r, err := Open(p, ReaderOptions{HasHeader: true, Strict: true})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	require.NoError(t, err)
	_, err = r.ReadAll(schema)
	assert.Error(t, err)

	lax, err := Open(p, ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	defer func() { _ = lax.Close() }()
	schema, err = lax.InferSchema()
	require.NoError(t, err)
	fr, err := lax.ReadAll(schema)
	require.NoError(t, err)
	assert.Equal(t, 2, fr.Rows())
	assert.Equal(t, "short_records=1", lax.Warnings())
}
