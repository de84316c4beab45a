// Package pipeline runs the clean and enrich stages over monthly trip files
// and reports one Status per file. A failing file never stops the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/wdm0006/tripjanitor/pkg/config"
	"github.com/wdm0006/tripjanitor/pkg/enrich"
	iox "github.com/wdm0006/tripjanitor/pkg/io/ioutils"
	"github.com/wdm0006/tripjanitor/pkg/io/tableio"
	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/metrics"
	"github.com/wdm0006/tripjanitor/pkg/rules"
	"github.com/wdm0006/tripjanitor/pkg/trips"
)

// ErrUnknownService aborts a run that names a service with no rename table.
var ErrUnknownService = trips.ErrUnknownService

const (
	stageClean  = "clean"
	stageEnrich = "enrich"
)

// Runner holds what every file shares: configuration, the rename catalog
// and the observability sinks. It keeps no per-file state.
type Runner struct {
	cfg      config.Config
	catalog  trips.Catalog
	logger   *zap.Logger
	metrics  *metrics.Metrics
	clock    clockwork.Clock
	observer j.StepObserver
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option       { return func(r *Runner) { r.logger = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(r *Runner) { r.metrics = m } }
func WithClock(c clockwork.Clock) Option    { return func(r *Runner) { r.clock = c } }
func WithCatalog(c trips.Catalog) Option    { return func(r *Runner) { r.catalog = c } }

// WithStepObserver receives the row counts of every cleaning step, next to
// the metrics.
func WithStepObserver(fn j.StepObserver) Option { return func(r *Runner) { r.observer = fn } }

func New(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.catalog == nil {
		r.catalog = trips.DefaultCatalog()
	}
	return r
}

func (r *Runner) Metrics() *metrics.Metrics { return r.metrics }

func (r *Runner) Layout() Layout {
	return Layout{RawDir: r.cfg.Paths.RawDir, CleanDir: r.cfg.Paths.CleanDir}
}

// Request selects the files of one run: every service for every month in
// From..To.
type Request struct {
	Services  []string
	From, To  string
	Overwrite bool
	Enrich    bool
}

// Run cleans, and optionally enriches, every requested file. It returns an
// error only when the request itself is unusable or ctx is done; per-file
// problems are reported in the statuses.
func (r *Runner) Run(ctx context.Context, req Request) ([]Status, error) {
	names := req.Services
	if len(names) == 0 {
		names = r.cfg.Services
	}
	services := make([]string, len(names))
	for i, s := range names {
		t, err := r.catalog.Lookup(s)
		if err != nil {
			return nil, err
		}
		services[i] = t.Service
	}
	months, err := MonthRange(req.From, req.To)
	if err != nil {
		return nil, err
	}

	var refs references
	if req.Enrich {
		refs = r.loadReferences(r.cfg.Paths.ZoneLookup, r.cfg.Paths.Weather)
		if refs.err != nil {
			r.logger.Warn("reference data unavailable, enrichment will fail", zap.Error(refs.err))
		}
	}

	layout := r.Layout()
	out := make([]Status, 0, len(services)*len(months))
	for _, svc := range services {
		for _, m := range months {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			dst := layout.CleanPath(svc, m)
			st := r.Clean(ctx, layout.RawPath(svc, m), dst, svc, req.Overwrite)
			if req.Enrich && st.Outcome != Fail {
				st = st.then(stageEnrich, r.enrichWith(ctx, dst, refs, req.Overwrite))
			}
			out = append(out, st)
		}
	}
	r.summarize(out)
	return out, nil
}

// Clean maps, validates and applies the family rules to the raw file in and
// writes the result to out. An existing out is kept unless overwrite is set.
func (r *Runner) Clean(ctx context.Context, in, out, service string, overwrite bool) (st Status) {
	start := r.clock.Now()
	defer func() {
		st.Elapsed = r.clock.Since(start)
		r.record(stageClean, service, st)
	}()

	table, err := r.catalog.Lookup(service)
	if err != nil {
		return fail(out, err)
	}
	if !iox.Exists(in) {
		return fail(in, errors.New("input not found"))
	}
	if !overwrite && iox.Exists(out) {
		return skip(out, "already exists")
	}
	raw, err := tableio.Read(in)
	if err != nil {
		return fail(out, err)
	}
	r.metrics.RowsRead.WithLabelValues(table.Service).Add(float64(raw.Rows()))

	cleaned, notes, err := r.clean(ctx, table, raw)
	if err != nil {
		return fail(out, err)
	}
	if err := tableio.Write(out, cleaned); err != nil {
		return fail(out, err)
	}
	r.metrics.RowsWritten.WithLabelValues(stageClean).Add(float64(cleaned.Rows()))
	return ok(out, cleaned.Rows(), notes...)
}

func (r *Runner) clean(ctx context.Context, table trips.RenameTable, raw *j.Frame) (*j.Frame, []string, error) {
	logger := r.logger.With(zap.String("service", table.Service))
	validator := trips.NewValidator(r.cfg.Validation, table, logger)
	validator.Observe(r.observe)
	policy, err := rules.ForFamily(table.Family, r.cfg.Rules(), logger)
	if err != nil {
		return nil, nil, err
	}
	policy.Observe(r.observe)

	valid, err := j.NewPipeline().
		Add(&trips.Mapper{Table: table}, validator).
		Observe(func(step string, in, out int) {
			logger.Debug("stage step", zap.String("step", step), zap.Int("rows_in", in), zap.Int("rows_out", out))
		}).
		Run(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	var notes []string
	var missing *rules.MissingFieldError
	if errors.As(policy.Check(valid), &missing) {
		notes = append(notes, "missing "+missing.Field)
	}
	priced, err := policy.Apply(ctx, valid)
	if err != nil {
		return nil, nil, err
	}
	return priced, notes, nil
}

func (r *Runner) observe(step string, in, out int) {
	r.metrics.StepObserver()(step, in, out)
	if r.observer != nil {
		r.observer(step, in, out)
	}
}

// Enrich joins the cleaned artifact at out with the zone table and, when
// weatherPath is set, the weather table, and rewrites it in place. An
// artifact that is already enriched is kept unless overwrite is set.
func (r *Runner) Enrich(ctx context.Context, out, zonePath, weatherPath string, overwrite bool) Status {
	return r.enrichWith(ctx, out, r.loadReferences(zonePath, weatherPath), overwrite)
}

// references is the outcome of loading the reference tables once.
type references struct {
	joiner *enrich.Joiner
	err    error
}

func (r *Runner) loadReferences(zonePath, weatherPath string) references {
	zones, err := enrich.LoadZones(zonePath)
	if err != nil {
		return references{err: err}
	}
	var weather *enrich.WeatherTable
	if weatherPath != "" {
		if weather, err = enrich.LoadWeather(weatherPath, r.cfg.Weather.PrecipThreshold); err != nil {
			return references{err: err}
		}
	}
	r.logger.Debug("reference data loaded", zap.Int("zones", zones.Len()), zap.Bool("weather", weather != nil))
	return references{joiner: enrich.NewJoiner(zones, weather, r.logger)}
}

func (r *Runner) enrichWith(ctx context.Context, out string, refs references, overwrite bool) (st Status) {
	start := r.clock.Now()
	defer func() {
		st.Elapsed = r.clock.Since(start)
		r.record(stageEnrich, "", st)
	}()

	if !iox.Exists(out) {
		return fail(out, errors.New("artifact not found"))
	}
	if refs.err != nil {
		return fail(out, refs.err)
	}
	f, err := tableio.Read(out)
	if err != nil {
		return fail(out, err)
	}
	if enrich.Enriched(f) {
		if !overwrite {
			return skip(out, "already enriched")
		}
		f = f.Drop(enrich.Columns...)
	}
	joined, err := refs.joiner.Join(ctx, f)
	if err != nil {
		return fail(out, fmt.Errorf("join: %w", err))
	}
	if err := tableio.Write(out, joined); err != nil {
		return fail(out, err)
	}
	r.metrics.RowsWritten.WithLabelValues(stageEnrich).Add(float64(joined.Rows()))
	notes := []string{"zones"}
	if refs.joiner.Weather != nil {
		notes = append(notes, "weather")
	}
	return ok(out, joined.Rows(), notes...)
}

// record counts and logs the status of one stage.
func (r *Runner) record(stage, service string, st Status) {
	r.metrics.Files.WithLabelValues(stage, st.Outcome.label()).Inc()
	r.metrics.StageDuration.WithLabelValues(stage).Observe(st.Elapsed.Seconds())

	fields := []zap.Field{
		zap.String("stage", stage),
		zap.String("file", filepath.Base(st.File)),
		zap.Stringer("outcome", st.Outcome),
		zap.Duration("elapsed", st.Elapsed),
	}
	if service != "" {
		fields = append(fields, zap.String("service", service))
	}
	switch st.Outcome {
	case OK:
		r.logger.Info("file done", append(fields, zap.Int("rows", st.Rows), zap.Strings("notes", st.Notes))...)
	case Skip:
		r.logger.Info("file skipped", append(fields, zap.String("reason", st.Reason))...)
	case Fail:
		r.logger.Warn("file failed", append(fields, zap.String("reason", st.Reason))...)
	}
}

func (r *Runner) summarize(all []Status) {
	counts := map[Outcome]int{}
	for _, st := range all {
		counts[st.Outcome]++
	}
	r.logger.Info("run complete",
		zap.Int("files", len(all)),
		zap.Int(OK.label(), counts[OK]),
		zap.Int(Skip.label(), counts[Skip]),
		zap.Int(Fail.label(), counts[Fail]))
}
