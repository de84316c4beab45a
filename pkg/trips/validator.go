package trips

import (
	"context"
	"time"

	"go.uber.org/zap"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/transform/validate"
)

// ValidationConfig holds the family-agnostic thresholds.
type ValidationConfig struct {
	Distance       validate.Bound `json:"distance" yaml:"distance" toml:"distance"`
	Duration       validate.Bound `json:"duration" yaml:"duration" toml:"duration"`
	StrictTemporal bool           `json:"strict_temporal" yaml:"strict_temporal" toml:"strict_temporal"`
	UnknownZones   []int64        `json:"unknown_zones" yaml:"unknown_zones" toml:"unknown_zones"`
}

// DefaultValidation uses the most recent thresholds: distance (0.1, 200) miles
// and duration (1, 180) minutes, with end >= start.
func DefaultValidation() ValidationConfig {
	return ValidationConfig{
		Distance: validate.Open(0.1, 200),
		Duration: validate.Open(1, 180),
	}
}

// Validator applies the common record rules to a mapped frame. The step order
// is fixed: later steps rely on the coercions and derivations of earlier ones.
type Validator struct {
	cfg      ValidationConfig
	table    RenameTable
	logger   *zap.Logger
	observer j.StepObserver
}

func NewValidator(cfg ValidationConfig, table RenameTable, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{cfg: cfg, table: table, logger: logger}
}

func (v *Validator) Name() string { return "validate_records" }

// Steps returns the validator as individual pipeline steps.
func (v *Validator) Steps() []j.Transform {
	var steps []j.Transform
	// 1. coerce every mapped column; failures become null
	seen := map[string]bool{}
	for _, fd := range v.table.Fields {
		if seen[fd.Canonical] || fd.Kind == j.KindString {
			continue
		}
		seen[fd.Canonical] = true
		steps = append(steps, &validate.Coerce{Column: fd.Canonical, Kind: fd.Kind, Report: v.reportConversion})
	}
	// 2. duration before anything is dropped
	steps = append(steps, &validate.Elapsed{Start: StartTime, End: EndTime, Out: DurationMin, Unit: time.Minute})
	// 3. prerequisite for every comparison below
	steps = append(steps, &validate.DropNulls{
		Label:   "required",
		Columns: []string{StartTime, EndTime, OriginZoneID, DestZoneID, Distance, DurationMin},
	})
	steps = append(steps,
		&validate.Temporal{Start: StartTime, End: EndTime, Strict: v.cfg.StrictTemporal},
		&validate.Range{Column: Distance, Bound: v.cfg.Distance},
		&validate.Range{Column: DurationMin, Bound: v.cfg.Duration},
		validate.NewExcludeIn(OriginZoneID, v.cfg.UnknownZones),
		validate.NewExcludeIn(DestZoneID, v.cfg.UnknownZones),
		&validate.Tag{Column: VehicleFamily, Value: v.table.Family.String()},
		&validate.DropNulls{Label: "core", Columns: Core},
	)
	return steps
}

func (v *Validator) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	return j.NewPipeline().Add(v.Steps()...).Observe(v.step).Run(ctx, f)
}

// Observe registers fn to receive per-step row counts.
func (v *Validator) Observe(fn j.StepObserver) { v.observer = fn }

func (v *Validator) step(name string, in, out int) {
	if in != out {
		v.logger.Debug("rows dropped", zap.String("step", name), zap.Int("rows_in", in), zap.Int("rows_out", out))
	}
	if v.observer != nil {
		v.observer(name, in, out)
	}
}

func (v *Validator) reportConversion(column string, failed int) {
	v.logger.Debug("values could not be converted, set to null",
		zap.String("service", v.table.Service),
		zap.String("column", column),
		zap.Int("count", failed))
}
