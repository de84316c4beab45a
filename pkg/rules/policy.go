// Package rules holds the family-specific rule sets applied after record
// validation. Each family is one Policy variant; the set is closed.
package rules

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/trips"
)

// Policy prices validated trips of one family and trims them to the family's
// output schema. Only *MeteredTaxi and *Dispatch implement it.
type Policy interface {
	j.Transform
	Family() trips.Family
	// Check reports the first required field missing from f, as a
	// *MissingFieldError.
	Check(f *j.Frame) error
	// Observe registers fn to receive per-step row counts.
	Observe(fn j.StepObserver)
	policy()
}

// MissingFieldError reports a required field that is absent from the whole
// file. Policies log it and return an empty frame instead of failing.
type MissingFieldError struct {
	Family trips.Family
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: required field %s is missing", e.Family, e.Field)
}

// Config bundles the configuration of every variant.
type Config struct {
	MeteredTaxi MeteredTaxiConfig `json:"metered_taxi" yaml:"metered_taxi" toml:"metered_taxi"`
	Dispatch    DispatchConfig    `json:"dispatch" yaml:"dispatch" toml:"dispatch"`
}

func DefaultConfig() Config {
	return Config{MeteredTaxi: DefaultMeteredTaxi(), Dispatch: DefaultDispatch()}
}

func (c Config) Validate() error {
	if err := c.MeteredTaxi.Validate(); err != nil {
		return fmt.Errorf("metered_taxi: %w", err)
	}
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return nil
}

// ForFamily returns the policy for fam.
func ForFamily(fam trips.Family, cfg Config, logger *zap.Logger) (Policy, error) {
	switch fam {
	case trips.MeteredTaxi:
		return NewMeteredTaxi(cfg.MeteredTaxi, logger), nil
	case trips.Dispatch:
		return NewDispatch(cfg.Dispatch, logger), nil
	}
	return nil, fmt.Errorf("no rule policy for family %s", fam)
}

// base carries what both variants share: the logger and the step observer.
type base struct {
	family   trips.Family
	logger   *zap.Logger
	observer j.StepObserver
}

func newBase(fam trips.Family, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{family: fam, logger: logger.With(zap.Stringer("family", fam))}
}

func (b *base) Family() trips.Family      { return b.family }
func (b *base) Observe(fn j.StepObserver) { b.observer = fn }
func (b *base) policy()                   {}

func (b *base) require(f *j.Frame, fields ...string) error {
	for _, name := range fields {
		if !f.Has(name) {
			return &MissingFieldError{Family: b.family, Field: name}
		}
	}
	return nil
}

// run checks the required fields, then runs steps. A missing field yields
// empty(f) and a warning.
func (b *base) run(ctx context.Context, f *j.Frame, check func(*j.Frame) error, steps []j.Transform, empty func(*j.Frame) (*j.Frame, error)) (*j.Frame, error) {
	if err := check(f); err != nil {
		b.logger.Warn("returning empty result", zap.Error(err))
		return empty(f)
	}
	return j.NewPipeline().Add(steps...).Observe(b.step).Run(ctx, f)
}

func (b *base) step(name string, in, out int) {
	b.logger.Debug("step", zap.String("step", name), zap.Int("rows_in", in), zap.Int("rows_out", out))
	if b.observer != nil {
		b.observer(name, in, out)
	}
}

// withPriceColumns appends empty price columns to a zero-row frame.
func withPriceColumns(f *j.Frame) (*j.Frame, error) {
	out, err := f.With(j.NewFloatColumn(trips.PriceBase, 0))
	if err != nil {
		return nil, err
	}
	return out.With(j.NewFloatColumn(trips.PriceTotalEst, 0))
}
