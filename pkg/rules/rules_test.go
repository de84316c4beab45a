package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/trips"
)

var pickup = time.Date(2024, 2, 3, 17, 20, 0, 0, time.UTC)

// clean maps, validates and applies the family policy to raw rows.
func clean(t *testing.T, service string, s j.Schema, rows []map[string]any) (*j.Frame, Policy) {
	t.Helper()
	raw, err := j.FromRecords(s, rows)
	require.NoError(t, err)
	table, err := trips.DefaultCatalog().Lookup(service)
	require.NoError(t, err)

	ctx := context.Background()
	mapped, err := (&trips.Mapper{Table: table}).Apply(ctx, raw)
	require.NoError(t, err)
	valid, err := trips.NewValidator(trips.DefaultValidation(), table, zaptest.NewLogger(t)).Apply(ctx, mapped)
	require.NoError(t, err)

	p, err := ForFamily(table.Family, DefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	out, err := p.Apply(ctx, valid)
	require.NoError(t, err)
	return out, p
}

func floatAt(t *testing.T, f *j.Frame, col string, row int) float64 {
	t.Helper()
	c, ok := f.ColumnByName(col)
	require.True(t, ok, "missing column %s", col)
	v, ok := c.(*j.FloatColumn).Get(row)
	require.True(t, ok, "null %s at row %d", col, row)
	return v
}

func yellowSchema() j.Schema {
	return j.Schema{Columns: []j.ColumnSchema{
		{Name: "VendorID", Type: j.KindInt},
		{Name: "tpep_pickup_datetime", Type: j.KindTime},
		{Name: "tpep_dropoff_datetime", Type: j.KindTime},
		{Name: "passenger_count", Type: j.KindFloat},
		{Name: "trip_distance", Type: j.KindFloat},
		{Name: "PULocationID", Type: j.KindInt},
		{Name: "DOLocationID", Type: j.KindInt},
		{Name: "payment_type", Type: j.KindInt},
		{Name: "fare_amount", Type: j.KindFloat},
		{Name: "tip_amount", Type: j.KindFloat},
		{Name: "tolls_amount", Type: j.KindFloat},
		{Name: "total_amount", Type: j.KindFloat},
	}}
}

func yellowRow(passengers, fare, total float64) map[string]any {
	return map[string]any{
		"VendorID":              int64(2),
		"tpep_pickup_datetime":  pickup,
		"tpep_dropoff_datetime": pickup.Add(12 * time.Minute),
		"passenger_count":       passengers,
		"trip_distance":         2.5,
		"PULocationID":          int64(161),
		"DOLocationID":          int64(237),
		"payment_type":          int64(1),
		"fare_amount":           fare,
		"tip_amount":            3.0,
		"tolls_amount":          0.0,
		"total_amount":          total,
	}
}

func TestMeteredTaxiScenario(t *testing.T) {
	out, _ := clean(t, "yellow", yellowSchema(), []map[string]any{
		yellowRow(9, 10, 15),
		yellowRow(1, 10, 0),
		yellowRow(1, 10, 15),
	})

	require.Equal(t, 1, out.Rows())
	assert.Equal(t, 10.0, floatAt(t, out, trips.PriceBase, 0))
	assert.Equal(t, 15.0, floatAt(t, out, trips.PriceTotalEst, 0))
	assert.Equal(t, 2.5, floatAt(t, out, trips.Distance, 0))
	assert.Equal(t, 12.0, floatAt(t, out, trips.DurationMin, 0))

	for _, gone := range []string{trips.BaseFare, trips.TotalAmount, trips.Tip, trips.Tolls, trips.PaymentType, trips.VendorID} {
		assert.False(t, out.Has(gone), "%s should be dropped", gone)
	}
	assert.True(t, out.Has(trips.PassengerCount))
}

func TestMeteredTaxiBounds(t *testing.T) {
	out, _ := clean(t, "yellow", yellowSchema(), []map[string]any{
		yellowRow(0, 0, 0.5),   // zero fare is allowed
		yellowRow(8, 499, 499), // upper edges
		yellowRow(1, 500, 501), // fare at the open end
		yellowRow(1, -1, 4),
		yellowRow(1, 10, 500),
	})
	require.Equal(t, 2, out.Rows())
	for r := 0; r < out.Rows(); r++ {
		v := floatAt(t, out, trips.PriceTotalEst, r)
		assert.True(t, v > 0 && v < 500)
	}
}

func TestMeteredTaxiNullPassengersSwept(t *testing.T) {
	row := yellowRow(1, 10, 15)
	row["passenger_count"] = nil
	out, _ := clean(t, "yellow", yellowSchema(), []map[string]any{row, yellowRow(2, 10, 15)})
	assert.Equal(t, 1, out.Rows())
}

func TestMeteredTaxiMissingTotal(t *testing.T) {
	s := yellowSchema()
	s.Columns = s.Columns[:len(s.Columns)-1]
	out, p := clean(t, "yellow", s, []map[string]any{yellowRow(1, 10, 15)})

	assert.Zero(t, out.Rows())
	assert.True(t, out.Has(trips.PriceBase, trips.PriceTotalEst, trips.StartTime))
	assert.False(t, out.Has(trips.BaseFare))

	mapped := j.NewFrame(j.Schema{Columns: []j.ColumnSchema{{Name: trips.BaseFare, Type: j.KindFloat}}})
	var mf *MissingFieldError
	require.ErrorAs(t, p.Check(mapped), &mf)
	assert.Equal(t, trips.TotalAmount, mf.Field)
	assert.Equal(t, trips.MeteredTaxi, mf.Family)
}

func fhvhvSchema() j.Schema {
	return j.Schema{Columns: []j.ColumnSchema{
		{Name: "hvfhs_license_num", Type: j.KindString},
		{Name: "dispatching_base_num", Type: j.KindString},
		{Name: "request_datetime", Type: j.KindTime},
		{Name: "pickup_datetime", Type: j.KindTime},
		{Name: "dropoff_datetime", Type: j.KindTime},
		{Name: "PULocationID", Type: j.KindInt},
		{Name: "DOLocationID", Type: j.KindInt},
		{Name: "trip_miles", Type: j.KindFloat},
		{Name: "trip_time", Type: j.KindInt},
		{Name: "base_passenger_fare", Type: j.KindFloat},
		{Name: "tolls", Type: j.KindFloat},
		{Name: "bcf", Type: j.KindFloat},
		{Name: "sales_tax", Type: j.KindFloat},
		{Name: "congestion_surcharge", Type: j.KindFloat},
		{Name: "airport_fee", Type: j.KindFloat},
		{Name: "tips", Type: j.KindFloat},
		{Name: "driver_pay", Type: j.KindFloat},
	}}
}

func fhvhvRow() map[string]any {
	return map[string]any{
		"hvfhs_license_num":    " hv0003",
		"dispatching_base_num": "B03404",
		"request_datetime":     pickup.Add(-3 * time.Minute),
		"pickup_datetime":      pickup,
		"dropoff_datetime":     pickup.Add(15 * time.Minute),
		"PULocationID":         int64(79),
		"DOLocationID":         int64(48),
		"trip_miles":           3.2,
		"trip_time":            int64(900),
		"base_passenger_fare":  20.0,
		"tolls":                2.0,
		"sales_tax":            1.5,
		"driver_pay":           14.0,
	}
}

func TestDispatchReconstruction(t *testing.T) {
	out, _ := clean(t, "fhvhv", fhvhvSchema(), []map[string]any{fhvhvRow()})

	require.Equal(t, 1, out.Rows())
	assert.Equal(t, 23.5, floatAt(t, out, trips.PriceTotalEst, 0))
	assert.Equal(t, 20.0, floatAt(t, out, trips.PriceBase, 0))
	assert.Equal(t, 3.0, floatAt(t, out, trips.WaitMin, 0))
	assert.Equal(t, []string{
		trips.StartTime, trips.EndTime, trips.OriginZoneID, trips.DestZoneID, trips.Distance,
		trips.DurationMin, trips.VehicleFamily, trips.WaitMin, trips.Platform,
		trips.PriceBase, trips.PriceTotalEst,
	}, out.Schema().Names())

	c, _ := out.ColumnByName(trips.Platform)
	v, _ := c.(*j.StringColumn).Get(0)
	assert.Equal(t, "Uber", v)
}

func TestDispatchFilters(t *testing.T) {
	negativeFee := fhvhvRow()
	negativeFee["tips"] = -1.0
	shortTrip := fhvhvRow()
	shortTrip["trip_time"] = int64(20)
	longWait := fhvhvRow()
	longWait["request_datetime"] = pickup.Add(-3 * time.Hour)
	requestAfterPickup := fhvhvRow()
	requestAfterPickup["request_datetime"] = pickup.Add(time.Minute)
	freeRide := fhvhvRow()
	freeRide["base_passenger_fare"] = 0.0
	pricey := fhvhvRow()
	pricey["base_passenger_fare"] = 499.0
	pricey["tolls"] = 5.0

	out, _ := clean(t, "fhvhv", fhvhvSchema(), []map[string]any{
		negativeFee, shortTrip, longWait, requestAfterPickup, freeRide, pricey, fhvhvRow(),
	})
	require.Equal(t, 1, out.Rows())
	for r := 0; r < out.Rows(); r++ {
		assert.False(t, out.RowHasNull(r, out.Schema().Names()...))
	}
}

func TestDispatchWithoutOptionalColumns(t *testing.T) {
	s := fhvhvSchema()
	var cols []j.ColumnSchema
	for _, c := range s.Columns {
		switch c.Name {
		case "request_datetime", "hvfhs_license_num", "trip_time", "tolls", "sales_tax":
			continue
		}
		cols = append(cols, c)
	}
	out, _ := clean(t, "fhvhv", j.Schema{Columns: cols}, []map[string]any{fhvhvRow()})

	require.Equal(t, 1, out.Rows())
	assert.Equal(t, 20.0, floatAt(t, out, trips.PriceTotalEst, 0))
	assert.False(t, out.Has(trips.WaitMin))
	assert.False(t, out.Has(trips.Platform))
}

func TestDispatchMissingBaseFare(t *testing.T) {
	s := fhvhvSchema()
	var cols []j.ColumnSchema
	for _, c := range s.Columns {
		if c.Name != "base_passenger_fare" {
			cols = append(cols, c)
		}
	}
	out, _ := clean(t, "fhvhv", j.Schema{Columns: cols}, []map[string]any{fhvhvRow()})
	assert.Zero(t, out.Rows())
	assert.True(t, out.Has(trips.PriceTotalEst))
	assert.False(t, out.Has(trips.Tolls))
}

func TestForFamilyAndObserver(t *testing.T) {
	_, err := ForFamily(trips.Family(42), DefaultConfig(), nil)
	assert.Error(t, err)

	p, err := ForFamily(trips.MeteredTaxi, DefaultConfig(), nil)
	require.NoError(t, err)
	assert.IsType(t, &MeteredTaxi{}, p)

	var steps []string
	p.Observe(func(step string, _, _ int) { steps = append(steps, step) })
	f := j.NewFrame(j.Schema{Columns: []j.ColumnSchema{
		{Name: trips.BaseFare, Type: j.KindFloat},
		{Name: trips.TotalAmount, Type: j.KindFloat},
	}})
	_, err = p.Apply(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "filter_range:"+trips.PassengerCount, steps[0])
	assert.Equal(t, "drop_nulls:sweep", steps[len(steps)-1])
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	cfg := DefaultConfig()
	cfg.Dispatch.Keep = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Dispatch.Keep = append(cfg.Dispatch.Keep, trips.Distance)
	assert.ErrorContains(t, cfg.Validate(), "duplicate column")
}
