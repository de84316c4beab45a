package golearn

import (
	"math"
	"testing"
	"time"

	"github.com/sjwhitworth/golearn/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

func enriched(t *testing.T) *j.Frame {
	t.Helper()
	start := time.Date(2024, 1, 15, 17, 5, 0, 0, time.UTC)
	f, err := j.FromRecords(j.Schema{Columns: []j.ColumnSchema{
		{Name: "start_time", Type: j.KindTime},
		{Name: "distance", Type: j.KindFloat},
		{Name: "origin_zone_id", Type: j.KindInt},
		{Name: "rain", Type: j.KindBool},
		{Name: "origin_borough", Type: j.KindString},
	}}, []map[string]any{
		{"start_time": start, "distance": 2.5, "origin_zone_id": int64(161), "rain": true, "origin_borough": "Manhattan"},
		{"start_time": start.Add(8 * time.Hour), "distance": nil, "origin_zone_id": int64(132), "rain": false, "origin_borough": nil},
	})
	require.NoError(t, err)
	return f
}

func TestToDenseInstances(t *testing.T) {
	inst, err := ToDenseInstances(enriched(t), Options{Class: "origin_borough"})
	require.NoError(t, err)

	cols, rows := inst.Size()
	assert.Equal(t, 5, cols)
	assert.Equal(t, 2, rows)

	attrs := inst.AllAttributes()
	assert.Equal(t, "start_time"+HourSuffix, attrs[0].GetName())
	classes := inst.AllClassAttributes()
	require.Len(t, classes, 1)
	assert.Equal(t, "origin_borough", classes[0].GetName())

	get := func(a base.Attribute, r int) float64 {
		spec, err := inst.GetAttribute(a)
		require.NoError(t, err)
		return base.UnpackBytesToFloat(inst.Get(spec, r))
	}
	assert.Equal(t, 17.0, get(attrs[0], 0))
	assert.Equal(t, 1.0, get(attrs[0], 1))
	assert.Equal(t, 2.5, get(attrs[1], 0))
	assert.True(t, math.IsNaN(get(attrs[1], 1)))
	assert.Equal(t, 161.0, get(attrs[2], 0))
	assert.Equal(t, 1.0, get(attrs[3], 0))
	assert.Equal(t, 0.0, get(attrs[3], 1))
}

func TestToDenseInstancesColumns(t *testing.T) {
	inst, err := ToDenseInstances(enriched(t), Options{Columns: []string{"distance", "origin_zone_id"}})
	require.NoError(t, err)
	cols, _ := inst.Size()
	assert.Equal(t, 2, cols)

	_, err = ToDenseInstances(enriched(t), Options{Columns: []string{"fare"}})
	assert.Error(t, err)
	_, err = ToDenseInstances(enriched(t), Options{Class: "fare"})
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	inst, err := ToDenseInstances(enriched(t), Options{Columns: []string{"distance", "origin_borough"}})
	require.NoError(t, err)
	back, err := FromDenseInstances(inst)
	require.NoError(t, err)

	require.Equal(t, 2, back.Rows())
	assert.Equal(t, []string{"distance", "origin_borough"}, back.Schema().Names())
	c, _ := back.ColumnByName("distance")
	assert.True(t, c.IsNull(1))
	c, _ = back.ColumnByName("origin_borough")
	v, _ := j.Value(c, 0)
	assert.Equal(t, "Manhattan", v)
	assert.True(t, c.IsNull(1))
}
