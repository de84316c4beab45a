package rules

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/transform/impute"
	"github.com/wdm0006/tripjanitor/pkg/transform/standardize"
	"github.com/wdm0006/tripjanitor/pkg/transform/validate"
	"github.com/wdm0006/tripjanitor/pkg/trips"
)

// FeeComponents are summed onto the base fare to rebuild a dispatch total.
var FeeComponents = []string{
	trips.Tolls, trips.BlackCarFund, trips.SalesTax, trips.CongestionSurcharge,
	trips.AirportFee, trips.CBDSurcharge, trips.Tip,
}

// DispatchConfig bounds the dispatch fields. Keep is the whitelist of output
// columns; names absent from the frame are skipped. Platforms maps license
// numbers to operator names.
type DispatchConfig struct {
	BaseFare    validate.Bound    `json:"base_fare" yaml:"base_fare" toml:"base_fare"`
	TripSeconds validate.Bound    `json:"trip_seconds" yaml:"trip_seconds" toml:"trip_seconds"`
	WaitMin     validate.Bound    `json:"wait_min" yaml:"wait_min" toml:"wait_min"`
	Fee         validate.Bound    `json:"fee" yaml:"fee" toml:"fee"`
	Total       validate.Bound    `json:"total" yaml:"total" toml:"total"`
	Keep        []string          `json:"keep" yaml:"keep" toml:"keep"`
	Platforms   map[string]string `json:"platforms" yaml:"platforms" toml:"platforms"`
}

func DefaultDispatch() DispatchConfig {
	return DispatchConfig{
		BaseFare:    validate.Open(0, 500),
		TripSeconds: validate.Open(30, 6*60*60),
		WaitMin:     validate.Closed(0, 120),
		Fee:         validate.AtLeast(0),
		Total:       validate.Open(0, 500),
		Keep: append(append([]string(nil), trips.Core...),
			trips.WaitMin, trips.Platform, trips.PriceBase, trips.PriceTotalEst),
		Platforms: map[string]string{
			"HV0002": "Juno",
			"HV0003": "Uber",
			"HV0004": "Via",
			"HV0005": "Lyft",
		},
	}
}

func (c DispatchConfig) Validate() error {
	bounds := map[string]validate.Bound{
		"base_fare": c.BaseFare, "trip_seconds": c.TripSeconds, "wait_min": c.WaitMin,
		"fee": c.Fee, "total": c.Total,
	}
	for name, b := range bounds {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if len(c.Keep) == 0 {
		return fmt.Errorf("keep: empty whitelist")
	}
	seen := make(map[string]bool, len(c.Keep))
	for _, k := range c.Keep {
		if seen[k] {
			return fmt.Errorf("keep: duplicate column %q", k)
		}
		seen[k] = true
	}
	return nil
}

// Dispatch rebuilds the total from the base fare and the itemized fees and
// keeps only the whitelisted columns.
type Dispatch struct {
	base
	cfg DispatchConfig
}

func NewDispatch(cfg DispatchConfig, logger *zap.Logger) *Dispatch {
	return &Dispatch{base: newBase(trips.Dispatch, logger), cfg: cfg}
}

func (p *Dispatch) Name() string { return "rules:" + p.family.String() }

func (p *Dispatch) Check(f *j.Frame) error {
	return p.require(f, trips.BaseFare)
}

// Steps lists the rule steps for a frame whose columns are known, since the
// wait time only exists when the request time does.
func (p *Dispatch) Steps(f *j.Frame) []j.Transform {
	steps := []j.Transform{
		&validate.Range{Column: trips.BaseFare, Bound: p.cfg.BaseFare},
		&validate.Range{Column: trips.TripSeconds, Bound: p.cfg.TripSeconds},
	}
	if f.Has(trips.RequestTime) {
		steps = append(steps,
			&validate.Elapsed{Start: trips.RequestTime, End: trips.StartTime, Out: trips.WaitMin, Unit: time.Minute},
			&validate.Range{Column: trips.WaitMin, Bound: p.cfg.WaitMin},
		)
	}
	for _, fee := range FeeComponents {
		steps = append(steps,
			&impute.Constant{Column: fee, Value: 0.0},
			&validate.Range{Column: fee, Bound: p.cfg.Fee},
		)
	}
	steps = append(steps,
		&derivePrice{Base: trips.BaseFare, Fees: FeeComponents},
		&validate.Range{Column: trips.PriceTotalEst, Bound: p.cfg.Total},
		&standardize.Trim{Column: trips.Platform},
		&standardize.Upper{Column: trips.Platform},
		&standardize.MapValues{Column: trips.Platform, Map: p.cfg.Platforms},
		&selectColumns{Columns: p.cfg.Keep},
		&validate.DropNulls{Label: "sweep"},
	)
	return steps
}

func (p *Dispatch) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	return p.run(ctx, f, p.Check, p.Steps(f), p.empty)
}

func (p *Dispatch) empty(f *j.Frame) (*j.Frame, error) {
	return withPriceColumns(f.Select(p.cfg.Keep...).Drop(trips.PriceBase, trips.PriceTotalEst).Empty())
}

// selectColumns keeps Columns, in that order.
type selectColumns struct {
	Columns []string
}

func (t *selectColumns) Name() string { return "select_columns" }

func (t *selectColumns) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	return f.Select(t.Columns...), nil
}
