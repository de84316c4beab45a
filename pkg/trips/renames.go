package trips

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// ErrUnknownService is returned for a service name with no rename table.
var ErrUnknownService = errors.New("unknown service")

// Field maps one raw source column onto a canonical column of a given kind.
type Field struct {
	Raw       string
	Canonical string
	Kind      j.Kind
}

// RenameTable is the versioned column mapping for one service. Tables are
// values; callers pass them explicitly and never mutate them.
type RenameTable struct {
	Service string
	Family  Family
	Version string
	Fields  []Field
}

// Kind returns the canonical kind for a canonical column name.
func (t RenameTable) Kind(canonical string) (j.Kind, bool) {
	for _, f := range t.Fields {
		if f.Canonical == canonical {
			return f.Kind, true
		}
	}
	return j.KindInvalid, false
}

// Catalog indexes rename tables by service name.
type Catalog map[string]RenameTable

// Lookup finds the table for a service, case-insensitively.
func (c Catalog) Lookup(service string) (RenameTable, error) {
	t, ok := c[strings.ToLower(strings.TrimSpace(service))]
	if !ok {
		return RenameTable{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownService, service, strings.Join(c.Services(), ", "))
	}
	return t, nil
}

// Services lists the known service names in sorted order.
func (c Catalog) Services() []string {
	out := make([]string, 0, len(c))
	for s := range c {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// DefaultCatalog returns the rename tables for the TLC trip record files.
func DefaultCatalog() Catalog {
	return Catalog{
		"yellow": meteredTable("yellow", "tpep_pickup_datetime", "tpep_dropoff_datetime"),
		"green":  meteredTable("green", "lpep_pickup_datetime", "lpep_dropoff_datetime"),
		"fhvhv":  dispatchTable(),
	}
}

func meteredTable(service, pickup, dropoff string) RenameTable {
	return RenameTable{
		Service: service,
		Family:  MeteredTaxi,
		Version: "2025-01",
		Fields: []Field{
			{"VendorID", VendorID, j.KindInt},
			{pickup, StartTime, j.KindTime},
			{dropoff, EndTime, j.KindTime},
			{"PULocationID", OriginZoneID, j.KindInt},
			{"DOLocationID", DestZoneID, j.KindInt},
			{"passenger_count", PassengerCount, j.KindInt},
			{"trip_distance", Distance, j.KindFloat},
			{"fare_amount", BaseFare, j.KindFloat},
			{"extra", Extra, j.KindFloat},
			{"mta_tax", MTATax, j.KindFloat},
			{"tip_amount", Tip, j.KindFloat},
			{"tolls_amount", Tolls, j.KindFloat},
			{"ehail_fee", EhailFee, j.KindFloat},
			{"improvement_surcharge", ImprovementSurcharge, j.KindFloat},
			{"congestion_surcharge", CongestionSurcharge, j.KindFloat},
			{"airport_fee", AirportFee, j.KindFloat},
			{"Airport_fee", AirportFee, j.KindFloat},
			{"cbd_congestion_fee", CBDSurcharge, j.KindFloat},
			{"total_amount", TotalAmount, j.KindFloat},
			{"payment_type", PaymentType, j.KindInt},
			{"RatecodeID", RateCode, j.KindInt},
			{"trip_type", TripType, j.KindInt},
		},
	}
}

func dispatchTable() RenameTable {
	return RenameTable{
		Service: "fhvhv",
		Family:  Dispatch,
		Version: "2025-01",
		Fields: []Field{
			{"hvfhs_license_num", Platform, j.KindString},
			{"dispatching_base_num", DispatchingBase, j.KindString},
			{"originating_base_num", OriginatingBase, j.KindString},
			{"request_datetime", RequestTime, j.KindTime},
			{"on_scene_datetime", OnSceneTime, j.KindTime},
			{"pickup_datetime", StartTime, j.KindTime},
			{"dropoff_datetime", EndTime, j.KindTime},
			{"PULocationID", OriginZoneID, j.KindInt},
			{"DOLocationID", DestZoneID, j.KindInt},
			{"trip_miles", Distance, j.KindFloat},
			{"trip_time", TripSeconds, j.KindFloat},
			{"base_passenger_fare", BaseFare, j.KindFloat},
			{"tolls", Tolls, j.KindFloat},
			{"bcf", BlackCarFund, j.KindFloat},
			{"sales_tax", SalesTax, j.KindFloat},
			{"congestion_surcharge", CongestionSurcharge, j.KindFloat},
			{"airport_fee", AirportFee, j.KindFloat},
			{"cbd_congestion_fee", CBDSurcharge, j.KindFloat},
			{"tips", Tip, j.KindFloat},
			{"driver_pay", DriverPay, j.KindFloat},
			{"shared_request_flag", SharedRequest, j.KindString},
			{"shared_match_flag", SharedMatch, j.KindString},
			{"access_a_ride_flag", AccessARide, j.KindString},
			{"wav_request_flag", WAVRequest, j.KindString},
			{"wav_match_flag", WAVMatch, j.KindString},
		},
	}
}
