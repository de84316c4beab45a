// Package enrich left-joins cleaned trips against zone and hourly weather
// reference tables and orders them by start time.
package enrich

import (
	"errors"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// ErrReferenceDataMissing is returned when a reference table is absent or
// lacks its key columns.
var ErrReferenceDataMissing = errors.New("reference data missing")

// Columns added by enrichment.
const (
	OriginZoneName = "origin_zone_name"
	OriginBorough  = "origin_borough"
	DestZoneName   = "dest_zone_name"
	DestBorough    = "dest_borough"
	TemperatureC   = "temperature_c"
	WindSpeedKmh   = "wind_speed_kmh"
	Rain           = "rain"
	Snow           = "snow"
)

// Columns lists every column enrichment may add, in output order.
var Columns = []string{
	OriginZoneName, OriginBorough, DestZoneName, DestBorough,
	TemperatureC, WindSpeedKmh, Rain, Snow,
}

// Enriched reports whether f already carries zone enrichment.
func Enriched(f *j.Frame) bool {
	return f.Has(OriginZoneName, OriginBorough)
}

// firstOf returns the first of names present in f.
func firstOf(f *j.Frame, names ...string) (j.Column, bool) {
	for _, n := range names {
		if c, ok := f.ColumnByName(n); ok {
			return c, true
		}
	}
	return nil, false
}
