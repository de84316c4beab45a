package enrich

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/trips"
)

// Joiner enriches cleaned trips. Zones are required; Weather is optional.
// Both are read-only and may be shared across files.
type Joiner struct {
	Zones   *ZoneLookup
	Weather *WeatherTable
	logger  *zap.Logger
}

func NewJoiner(zones *ZoneLookup, weather *WeatherTable, logger *zap.Logger) *Joiner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Joiner{Zones: zones, Weather: weather, logger: logger}
}

func (jn *Joiner) Name() string { return "enrich" }

// Steps lists the join steps that apply to f, in order.
func (jn *Joiner) Steps(f *j.Frame) []j.Transform {
	steps := []j.Transform{
		&zoneJoin{zones: jn.Zones, key: trips.OriginZoneID, name: OriginZoneName, borough: OriginBorough, logger: jn.logger},
		&zoneJoin{zones: jn.Zones, key: trips.DestZoneID, name: DestZoneName, borough: DestBorough, logger: jn.logger},
	}
	if jn.Weather != nil {
		steps = append(steps, &weatherJoin{weather: jn.Weather, logger: jn.logger})
	}
	return append(steps, sortByStart{})
}

// Join runs the zone joins, the weather join when a table is set, and a
// stable sort by start time. The row count never changes.
func (jn *Joiner) Join(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	if jn.Zones == nil {
		return nil, fmt.Errorf("%w: no zone table", ErrReferenceDataMissing)
	}
	out, err := j.NewPipeline().Add(jn.Steps(f)...).Run(ctx, f)
	if err != nil {
		return nil, err
	}
	if out.Rows() != f.Rows() {
		return nil, errors.New("enrich: row count changed")
	}
	return out, nil
}

func (jn *Joiner) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	return jn.Join(ctx, f)
}

type zoneJoin struct {
	zones              *ZoneLookup
	key, name, borough string
	logger             *zap.Logger
}

func (t *zoneJoin) Name() string { return "join_zones:" + t.key }

func (t *zoneJoin) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	idx := make([]int, f.Rows())
	for i := range idx {
		idx[i] = -1
	}
	if c, ok := f.ColumnByName(t.key); ok {
		ids, _ := j.AsInt(c)
		for r := range idx {
			if id, ok := ids.Get(r); ok {
				if src, ok := t.zones.rows[id]; ok {
					idx[r] = src
				}
			}
		}
	}
	t.logger.Debug("zone join", zap.String("key", t.key), zap.Int("unmatched", countMissing(idx)))
	out, err := f.With(t.zones.name.Take(idx).WithName(t.name))
	if err != nil {
		return nil, err
	}
	return out.With(t.zones.borough.Take(idx).WithName(t.borough))
}

type weatherJoin struct {
	weather *WeatherTable
	logger  *zap.Logger
}

func (t *weatherJoin) Name() string { return "join_weather" }

// Apply matches on the hour of start_time and the origin borough. Without an
// origin borough there is nothing to match and the frame is returned as is.
func (t *weatherJoin) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	bc, ok := f.ColumnByName(OriginBorough)
	if !ok {
		return f, nil
	}
	boroughs, ok := bc.(*j.StringColumn)
	if !ok {
		return nil, fmt.Errorf("join_weather: %s is %s, want string", OriginBorough, bc.Kind())
	}
	idx := make([]int, f.Rows())
	for i := range idx {
		idx[i] = -1
	}
	if sc, ok := f.ColumnByName(trips.StartTime); ok {
		starts, _ := j.AsTime(sc)
		for r := range idx {
			s, okS := starts.Get(r)
			b, okB := boroughs.Get(r)
			if !okS || !okB {
				continue
			}
			if src, ok := t.weather.row(s, b); ok {
				idx[r] = src
			}
		}
	}
	t.logger.Debug("weather join", zap.Int("unmatched", countMissing(idx)))
	out := f
	for _, c := range []j.Column{
		t.weather.temp.Take(idx).WithName(TemperatureC),
		t.weather.wind.Take(idx).WithName(WindSpeedKmh),
		t.weather.rain.Take(idx).WithName(Rain),
		t.weather.snow.Take(idx).WithName(Snow),
	} {
		var err error
		if out, err = out.With(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type sortByStart struct{}

func (sortByStart) Name() string { return "sort:" + trips.StartTime }

// Apply sorts by start_time, converting it to a time column first since an
// empty artifact stores it as text.
func (sortByStart) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	c, ok := f.ColumnByName(trips.StartTime)
	if !ok {
		return f, nil
	}
	tc, _ := j.AsTime(c)
	out, err := f.With(tc)
	if err != nil {
		return nil, err
	}
	return out.SortByTime(trips.StartTime)
}

func countMissing(idx []int) int {
	n := 0
	for _, i := range idx {
		if i < 0 {
			n++
		}
	}
	return n
}
