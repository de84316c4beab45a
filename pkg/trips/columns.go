// Package trips defines the canonical trip schema, the per-service rename
// tables that map raw source columns onto it, and the family-agnostic record
// validator.
package trips

import "fmt"

// Canonical column names.
const (
	StartTime      = "start_time"
	EndTime        = "end_time"
	OriginZoneID   = "origin_zone_id"
	DestZoneID     = "dest_zone_id"
	Distance       = "distance" // miles
	DurationMin    = "duration_min"
	VehicleFamily  = "vehicle_family"
	PassengerCount = "passenger_count"
	WaitMin        = "wait_min"
	Platform       = "platform"
	PriceBase      = "price_base"
	PriceTotalEst  = "price_total_est"

	// Raw-but-canonically-named inputs consumed by the rule engine.
	BaseFare             = "base_fare"
	TotalAmount          = "total_amount"
	TripSeconds          = "trip_seconds"
	RequestTime          = "request_time"
	OnSceneTime          = "on_scene_time"
	Tip                  = "tip"
	Tolls                = "tolls"
	Extra                = "extra"
	MTATax               = "mta_tax"
	ImprovementSurcharge = "improvement_surcharge"
	CongestionSurcharge  = "congestion_surcharge"
	AirportFee           = "airport_fee"
	CBDSurcharge         = "cbd_surcharge"
	EhailFee             = "ehail_fee"
	BlackCarFund         = "black_car_fund"
	SalesTax             = "sales_tax"
	DriverPay            = "driver_pay"
	PaymentType          = "payment_type"
	RateCode             = "rate_code"
	TripType             = "trip_type"
	VendorID             = "vendor_id"
	DispatchingBase      = "dispatching_base"
	OriginatingBase      = "originating_base"
	SharedRequest        = "shared_request"
	SharedMatch          = "shared_match"
	AccessARide          = "access_a_ride"
	WAVRequest           = "wav_request"
	WAVMatch             = "wav_match"
)

// Core holds the columns every validated trip carries, whatever its family.
var Core = []string{StartTime, EndTime, OriginZoneID, DestZoneID, Distance, DurationMin, VehicleFamily}

// Family is the closed set of record families.
type Family int

const (
	MeteredTaxi Family = iota + 1
	Dispatch
)

func (f Family) String() string {
	switch f {
	case MeteredTaxi:
		return "metered_taxi"
	case Dispatch:
		return "dispatch"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}
