package enrich

import (
	"context"
	"fmt"
	"time"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/transform/standardize"
)

// DefaultPrecipThreshold is the precipitation amount above which an hour
// counts as rainy or snowy.
const DefaultPrecipThreshold = 0.1

type weatherKey struct {
	hour    int64 // unix seconds, floored to the hour
	borough string
}

// WeatherTable holds hourly observations keyed by (hour, borough).
type WeatherTable struct {
	rows  map[weatherKey]int
	temp  *j.FloatColumn
	wind  *j.FloatColumn
	rain  *j.BoolColumn
	snow  *j.BoolColumn
	hours int
}

// WeatherFromFrame builds a table from hourly observations. Hour and borough
// columns are required. Temperature, wind and precipitation columns are
// optional and come out null when absent. Precipitation given as an amount is
// turned into a flag with the > threshold rule; flag columns are kept as is.
// The first row wins for a repeated (hour, borough).
func WeatherFromFrame(f *j.Frame, threshold float64) (*WeatherTable, error) {
	hourCol, ok := firstOf(f, "hour", "fecha_hora", "time", "datetime", "timestamp")
	if !ok {
		return nil, fmt.Errorf("%w: weather table has no hour column", ErrReferenceDataMissing)
	}
	hours, _ := j.AsTime(hourCol)

	trimmed, err := (&standardize.Trim{Column: "borough"}).Apply(context.Background(), f)
	if err != nil {
		return nil, err
	}
	boroughs, ok := firstOf(trimmed, "borough", "Borough")
	if !ok {
		return nil, fmt.Errorf("%w: weather table has no borough column", ErrReferenceDataMissing)
	}
	bc, ok := boroughs.(*j.StringColumn)
	if !ok {
		return nil, fmt.Errorf("weather borough column is %s, want string", boroughs.Kind())
	}

	n := f.Rows()
	w := &WeatherTable{
		rows: make(map[weatherKey]int, n),
		temp: floatColumn(f, n, TemperatureC, "temp_c", "temperature_2m", "temperature"),
		wind: floatColumn(f, n, WindSpeedKmh, "viento_kmh", "windspeed_10m", "wind_speed_10m", "wind_speed"),
		rain: flagColumn(f, n, threshold, []string{"lluvia", "rain_flag"}, []string{Rain, "precipitation"}),
		snow: flagColumn(f, n, threshold, []string{"nieve", "snow_flag"}, []string{Snow, "snowfall"}),
	}
	for r := 0; r < n; r++ {
		h, ok := hours.Get(r)
		b, okB := bc.Get(r)
		if !ok || !okB {
			continue
		}
		k := weatherKey{hour: h.Truncate(time.Hour).Unix(), borough: b}
		if _, dup := w.rows[k]; !dup {
			w.rows[k] = r
		}
	}
	w.hours = len(w.rows)
	return w, nil
}

// LoadWeather reads the weather table at path.
func LoadWeather(path string, threshold float64) (*WeatherTable, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no weather table configured", ErrReferenceDataMissing)
	}
	f, err := readReference(path)
	if err != nil {
		return nil, err
	}
	return WeatherFromFrame(f, threshold)
}

// Len is the number of distinct (hour, borough) observations.
func (w *WeatherTable) Len() int { return w.hours }

func (w *WeatherTable) row(hour time.Time, borough string) (int, bool) {
	r, ok := w.rows[weatherKey{hour: hour.Truncate(time.Hour).Unix(), borough: borough}]
	return r, ok
}

func floatColumn(f *j.Frame, n int, names ...string) *j.FloatColumn {
	if c, ok := firstOf(f, names...); ok {
		fc, _ := j.AsFloat(c)
		return fc
	}
	c, _ := j.NullColumn(names[0], j.KindFloat, n)
	return c.(*j.FloatColumn)
}

// flagColumn prefers a ready-made flag column and falls back to an amount
// column compared against threshold. An amount column that is already
// boolean is used as is.
func flagColumn(f *j.Frame, n int, threshold float64, flags, amounts []string) *j.BoolColumn {
	if c, ok := firstOf(f, flags...); ok {
		bc, _ := j.AsBool(c)
		return bc
	}
	c, ok := firstOf(f, amounts...)
	if !ok {
		nc, _ := j.NullColumn(flags[0], j.KindBool, n)
		return nc.(*j.BoolColumn)
	}
	if bc, ok := c.(*j.BoolColumn); ok {
		return bc
	}
	amount, _ := j.AsFloat(c)
	out := j.NewBoolColumn(c.Name(), n)
	for r := 0; r < n; r++ {
		v, ok := amount.Get(r)
		if !ok {
			out.SetNull(r)
			continue
		}
		out.Set(r, v > threshold)
	}
	return out
}
