package rules

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/transform/validate"
	"github.com/wdm0006/tripjanitor/pkg/trips"
)

// MeteredTaxiConfig bounds the metered taxi fields. Drop is the blacklist of
// columns removed from the output once the prices are derived.
type MeteredTaxiConfig struct {
	Passengers validate.Bound `json:"passengers" yaml:"passengers" toml:"passengers"`
	BaseFare   validate.Bound `json:"base_fare" yaml:"base_fare" toml:"base_fare"`
	Total      validate.Bound `json:"total" yaml:"total" toml:"total"`
	Drop       []string       `json:"drop" yaml:"drop" toml:"drop"`
}

func DefaultMeteredTaxi() MeteredTaxiConfig {
	return MeteredTaxiConfig{
		Passengers: validate.Closed(0, 8),
		BaseFare:   validate.ClosedOpen(0, 500),
		Total:      validate.Open(0, 500),
		Drop: []string{
			trips.BaseFare, trips.TotalAmount,
			trips.Extra, trips.MTATax, trips.Tip, trips.Tolls, trips.EhailFee,
			trips.ImprovementSurcharge, trips.CongestionSurcharge, trips.AirportFee, trips.CBDSurcharge,
			trips.PaymentType, trips.RateCode, trips.TripType, trips.VendorID,
		},
	}
}

func (c MeteredTaxiConfig) Validate() error {
	for name, b := range map[string]validate.Bound{"passengers": c.Passengers, "base_fare": c.BaseFare, "total": c.Total} {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// MeteredTaxi keeps every validated column except the blacklist. The source
// reports a definitive total, so nothing is reconstructed.
type MeteredTaxi struct {
	base
	cfg MeteredTaxiConfig
}

func NewMeteredTaxi(cfg MeteredTaxiConfig, logger *zap.Logger) *MeteredTaxi {
	return &MeteredTaxi{base: newBase(trips.MeteredTaxi, logger), cfg: cfg}
}

func (p *MeteredTaxi) Name() string { return "rules:" + p.family.String() }

func (p *MeteredTaxi) Check(f *j.Frame) error {
	return p.require(f, trips.BaseFare, trips.TotalAmount)
}

func (p *MeteredTaxi) Steps() []j.Transform {
	return []j.Transform{
		// nulls go in the final sweep
		&validate.Range{Column: trips.PassengerCount, Bound: p.cfg.Passengers, KeepNull: true},
		&validate.Range{Column: trips.BaseFare, Bound: p.cfg.BaseFare},
		&validate.Range{Column: trips.TotalAmount, Bound: p.cfg.Total},
		&derivePrice{Base: trips.BaseFare, Total: trips.TotalAmount},
		&dropColumns{Columns: p.cfg.Drop},
		&validate.DropNulls{Label: "sweep"},
	}
}

func (p *MeteredTaxi) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	return p.run(ctx, f, p.Check, p.Steps(), p.empty)
}

func (p *MeteredTaxi) empty(f *j.Frame) (*j.Frame, error) {
	return withPriceColumns(f.Drop(p.cfg.Drop...).Empty())
}

// dropColumns removes Columns from the frame; unknown names are ignored.
type dropColumns struct {
	Columns []string
}

func (t *dropColumns) Name() string { return "drop_columns" }

func (t *dropColumns) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	return f.Drop(t.Columns...), nil
}
