package trips

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/transform/validate"
)

var t0 = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

func yellowSchema() j.Schema {
	return j.Schema{Columns: []j.ColumnSchema{
		{Name: "tpep_pickup_datetime", Type: j.KindString},
		{Name: "tpep_dropoff_datetime", Type: j.KindString},
		{Name: "PULocationID", Type: j.KindInt},
		{Name: "DOLocationID", Type: j.KindInt},
		{Name: "trip_distance", Type: j.KindFloat},
		{Name: "fare_amount", Type: j.KindFloat},
		{Name: "store_and_fwd_flag", Type: j.KindString},
	}}
}

func yellowRow(start time.Time, minutes float64, distance float64) map[string]any {
	return map[string]any{
		"tpep_pickup_datetime":  start.Format("2006-01-02 15:04:05"),
		"tpep_dropoff_datetime": start.Add(time.Duration(minutes * float64(time.Minute))).Format("2006-01-02 15:04:05"),
		"PULocationID":          int64(161),
		"DOLocationID":          int64(237),
		"trip_distance":         distance,
		"fare_amount":           12.5,
		"store_and_fwd_flag":    "N",
	}
}

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, []string{"fhvhv", "green", "yellow"}, c.Services())

	tbl, err := c.Lookup(" Yellow ")
	require.NoError(t, err)
	assert.Equal(t, MeteredTaxi, tbl.Family)

	tbl, err = c.Lookup("fhvhv")
	require.NoError(t, err)
	assert.Equal(t, Dispatch, tbl.Family)
	k, ok := tbl.Kind(RequestTime)
	assert.True(t, ok)
	assert.Equal(t, j.KindTime, k)

	_, err = c.Lookup("citibike")
	assert.True(t, errors.Is(err, ErrUnknownService))
}

func TestMapperSelectsAndRenames(t *testing.T) {
	raw, err := j.FromRecords(yellowSchema(), []map[string]any{yellowRow(t0, 10, 2)})
	require.NoError(t, err)
	tbl, _ := DefaultCatalog().Lookup("yellow")

	out, err := (&Mapper{Table: tbl}).Apply(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{StartTime, EndTime, OriginZoneID, DestZoneID, Distance, BaseFare},
		out.Schema().Names())
}

func TestMapperFirstAliasWins(t *testing.T) {
	s := j.Schema{Columns: []j.ColumnSchema{{Name: "airport_fee", Type: j.KindFloat}, {Name: "Airport_fee", Type: j.KindFloat}}}
	raw, err := j.FromRecords(s, []map[string]any{{"airport_fee": 1.25, "Airport_fee": 9.0}})
	require.NoError(t, err)
	tbl, _ := DefaultCatalog().Lookup("yellow")

	out, err := (&Mapper{Table: tbl}).Apply(context.Background(), raw)
	require.NoError(t, err)
	c, _ := out.ColumnByName(AirportFee)
	v, _ := c.(*j.FloatColumn).Get(0)
	assert.Equal(t, 1.25, v)
}

func TestMapperSchemaError(t *testing.T) {
	s := j.Schema{Columns: []j.ColumnSchema{{Name: "foo", Type: j.KindInt}}}
	raw, _ := j.FromRecords(s, nil)
	tbl, _ := DefaultCatalog().Lookup("fhvhv")

	_, err := (&Mapper{Table: tbl}).Apply(context.Background(), raw)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "fhvhv", se.Service)
	assert.Equal(t, []string{"foo"}, se.Available)
}

func runValidator(t *testing.T, cfg ValidationConfig, rows ...map[string]any) *j.Frame {
	t.Helper()
	raw, err := j.FromRecords(yellowSchema(), rows)
	require.NoError(t, err)
	tbl, _ := DefaultCatalog().Lookup("yellow")
	mapped, err := (&Mapper{Table: tbl}).Apply(context.Background(), raw)
	require.NoError(t, err)
	out, err := NewValidator(cfg, tbl, zaptest.NewLogger(t)).Apply(context.Background(), mapped)
	require.NoError(t, err)
	return out
}

func TestValidatorFilters(t *testing.T) {
	bad := yellowRow(t0, 10, 2)
	bad["tpep_pickup_datetime"] = "not-a-date"
	nullZone := yellowRow(t0, 10, 2)
	nullZone["PULocationID"] = nil
	backwards := yellowRow(t0, -5, 2)
	zeroDuration := yellowRow(t0, 0, 2)
	tooFar := yellowRow(t0, 10, 250)
	tooShort := yellowRow(t0, 0.5, 2)
	tooLong := yellowRow(t0, 200, 2)
	ok := yellowRow(t0, 12, 2.5)

	out := runValidator(t, DefaultValidation(), bad, nullZone, backwards, zeroDuration, tooFar, tooShort, tooLong, ok)
	require.Equal(t, 1, out.Rows())

	d, _ := out.ColumnByName(DurationMin)
	v, _ := d.(*j.FloatColumn).Get(0)
	assert.Equal(t, 12.0, v)
	fam, _ := out.ColumnByName(VehicleFamily)
	s, _ := fam.(*j.StringColumn).Get(0)
	assert.Equal(t, "metered_taxi", s)
	start, _ := out.ColumnByName(StartTime)
	assert.Equal(t, j.KindTime, start.Kind())
}

func TestValidatorLegacyBounds(t *testing.T) {
	cfg := ValidationConfig{Distance: validate.Open(0, 1000), Duration: validate.Open(1, 300)}
	out := runValidator(t, cfg, yellowRow(t0, 200, 250), yellowRow(t0, 10, 0.05))
	assert.Equal(t, 2, out.Rows())
}

func TestValidatorUnknownZones(t *testing.T) {
	cfg := DefaultValidation()
	cfg.UnknownZones = []int64{264, 265}
	unknown := yellowRow(t0, 10, 2)
	unknown["DOLocationID"] = int64(265)
	out := runValidator(t, cfg, unknown, yellowRow(t0, 10, 2))
	assert.Equal(t, 1, out.Rows())
}

func TestValidatorInvariants(t *testing.T) {
	cfg := DefaultValidation()
	var rows []map[string]any
	for i := 0; i < 50; i++ {
		rows = append(rows, yellowRow(t0.Add(time.Duration(i)*time.Minute), float64(i%200)-5, float64(i%30)/2))
	}
	out := runValidator(t, cfg, rows...)
	require.Positive(t, out.Rows())

	dist, _ := out.ColumnByName(Distance)
	dur, _ := out.ColumnByName(DurationMin)
	st, _ := out.ColumnByName(StartTime)
	en, _ := out.ColumnByName(EndTime)
	for r := 0; r < out.Rows(); r++ {
		assert.False(t, out.RowHasNull(r, Core...))
		dv, _ := dist.(*j.FloatColumn).Get(r)
		uv, _ := dur.(*j.FloatColumn).Get(r)
		sv, _ := st.(*j.TimeColumn).Get(r)
		ev, _ := en.(*j.TimeColumn).Get(r)
		assert.True(t, cfg.Distance.Contains(dv))
		assert.True(t, cfg.Duration.Contains(uv))
		assert.False(t, ev.Before(sv))
	}
}

func TestValidatorMissingStartColumnEmptiesFrame(t *testing.T) {
	s := j.Schema{Columns: []j.ColumnSchema{{Name: "PULocationID", Type: j.KindInt}}}
	raw, _ := j.FromRecords(s, []map[string]any{{"PULocationID": int64(1)}})
	tbl, _ := DefaultCatalog().Lookup("yellow")
	mapped, err := (&Mapper{Table: tbl}).Apply(context.Background(), raw)
	require.NoError(t, err)

	out, err := NewValidator(DefaultValidation(), tbl, nil).Apply(context.Background(), mapped)
	require.NoError(t, err)
	assert.Zero(t, out.Rows())
}
