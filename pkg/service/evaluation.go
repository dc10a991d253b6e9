// Package service orchestrates the engine packages into the operations
// exposed by the API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/revlimit/modengine-go/log"
	"github.com/revlimit/modengine-go/pkg/engine/conflict"
	"github.com/revlimit/modengine-go/pkg/engine/gain"
	"github.com/revlimit/modengine-go/pkg/engine/laptime"
	"github.com/revlimit/modengine-go/pkg/engine/metrics"
	"github.com/revlimit/modengine-go/pkg/engine/scoring"
	"github.com/revlimit/modengine-go/pkg/engine/tables"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/sink"
	"github.com/revlimit/modengine-go/pkg/utils"
	"github.com/revlimit/modengine-go/pkg/utils/cache"
	"github.com/revlimit/modengine-go/pkg/utils/cache/loadercache"
)

var (
	ErrUnknownModification = errors.New("unknown modification")
	ErrNoCatalog           = errors.New("no catalog source configured")
	ErrNoDynoStore         = errors.New("no dyno store configured")
	ErrNoSampleStore       = errors.New("no lap sample store configured")
	ErrInvalidSample       = errors.New("invalid lap sample")
	ErrInvalidVehicle      = errors.New("invalid vehicle spec")
)

// validateSpec guards the calculators against vehicles that would put
// a zero into the power-to-weight formulas.
func validateSpec(spec *model.VehicleSpec) error {
	if spec == nil || spec.ID == "" {
		return fmt.Errorf("%w: missing vehicle", ErrInvalidVehicle)
	}
	if spec.StockHP <= 0 {
		return fmt.Errorf("%w: stockHp must be positive (%s)", ErrInvalidVehicle, spec.ID)
	}
	if spec.CurbWeight <= 0 {
		return fmt.Errorf("%w: curbWeight must be positive (%s)", ErrInvalidVehicle, spec.ID)
	}
	return nil
}

type (
	// CatalogSource provides the full modification catalog.
	CatalogSource func(ctx context.Context) ([]*model.Modification, error)
	// DynoStore persists a verified wheel measurement.
	DynoStore func(
		ctx context.Context,
		vehicleID, buildHash string,
		meas *model.DynoMeasurement,
	) error
	// LapSampleStore appends one lap time record.
	LapSampleStore func(ctx context.Context, sample *model.LapTimeSample) error

	calibKey struct {
		platformID string
		modID      string
	}

	// EvaluationResult is the combined output of one build evaluation.
	EvaluationResult struct {
		Conflicts []model.Conflict     `json:"conflicts"`
		Gain      *model.GainResult    `json:"gain"`
		Metrics   *model.MetricsResult `json:"metrics"`
		Scores    *model.ScoreSet      `json:"scores"`
		Stock     *model.ScoreSet      `json:"stockScores"`
	}

	Evaluator struct {
		tables     *tables.Tables
		catalog    CatalogSource
		calib      gain.CalibrationLookup
		dynoLookup gain.DynoLookup
		dynoStore  DynoStore
		samples    LapSampleStore
		aggregate  laptime.AggregateLookup
		sampleSink sink.SampleSink
		emitWait   time.Duration
		l          *log.Logger

		calibCache cache.Cache[calibKey, float64]
		conflicts  *conflict.Detector
		gains      *gain.Calculator
		metrics    *metrics.Calculator
		scores     *scoring.Engine
		laps       *laptime.Estimator
	}
	Option func(*Evaluator)
)

func WithTables(t *tables.Tables) Option {
	return func(e *Evaluator) { e.tables = t }
}

func WithCatalogSource(arg CatalogSource) Option {
	return func(e *Evaluator) { e.catalog = arg }
}

func WithCalibrationLookup(arg gain.CalibrationLookup) Option {
	return func(e *Evaluator) { e.calib = arg }
}

func WithDynoLookup(arg gain.DynoLookup) Option {
	return func(e *Evaluator) { e.dynoLookup = arg }
}

func WithDynoStore(arg DynoStore) Option {
	return func(e *Evaluator) { e.dynoStore = arg }
}

func WithLapSampleStore(arg LapSampleStore) Option {
	return func(e *Evaluator) { e.samples = arg }
}

func WithAggregateLookup(arg laptime.AggregateLookup) Option {
	return func(e *Evaluator) { e.aggregate = arg }
}

func WithSampleSink(arg sink.SampleSink) Option {
	return func(e *Evaluator) { e.sampleSink = arg }
}

// WithEmitTimeout bounds the background sample emission.
func WithEmitTimeout(arg time.Duration) Option {
	return func(e *Evaluator) { e.emitWait = arg }
}

func WithLogger(arg *log.Logger) Option {
	return func(e *Evaluator) { e.l = arg }
}

func NewEvaluator(opts ...Option) *Evaluator {
	ret := &Evaluator{
		tables:   tables.Current(),
		emitWait: 5 * time.Second,
		l:        log.Default().Named("service"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.calib != nil {
		ret.calibCache = loadercache.New(
			loadercache.WithLoader(func(ctx context.Context, k calibKey) (*float64, error) {
				return ret.calib(ctx, k.platformID, k.modID)
			}),
			loadercache.WithLogger[calibKey, float64](ret.l.Named("calib")),
		)
	}
	calibFn := ret.calib
	if ret.calibCache != nil {
		calibFn = func(ctx context.Context, platformID, modID string) (*float64, error) {
			return ret.calibCache.Get(ctx, calibKey{platformID: platformID, modID: modID})
		}
	}
	ret.conflicts = conflict.NewDetector()
	ret.gains = gain.NewCalculator(
		gain.WithTables(ret.tables),
		gain.WithCalibrationLookup(calibFn),
		gain.WithDynoLookup(ret.dynoLookup),
		gain.WithLogger(ret.l.Named("gain")),
	)
	ret.metrics = metrics.NewCalculator(metrics.WithTables(ret.tables))
	ret.scores = scoring.NewEngine()
	ret.laps = laptime.NewEstimator(
		laptime.WithTables(ret.tables),
		laptime.WithAggregateLookup(ret.aggregate),
		laptime.WithLogger(ret.l.Named("laptime")),
	)
	return ret
}

// ResolveBuild maps the build's mod ids to catalog entries. A build
// is a set: repeated ids resolve once. A single unknown id fails the
// whole resolution.
func (e *Evaluator) ResolveBuild(
	ctx context.Context,
	modIDs []string,
) ([]*model.Modification, error) {
	if e.catalog == nil {
		return nil, ErrNoCatalog
	}
	all, err := e.catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	byID := lo.SliceToMap(all,
		func(m *model.Modification) (string, *model.Modification) { return m.ID, m })
	modIDs = lo.Uniq(modIDs)
	ret := make([]*model.Modification, 0, len(modIDs))
	for _, id := range modIDs {
		m, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModification, id)
		}
		ret = append(ret, m)
	}
	return ret, nil
}

// Evaluate runs the full pipeline for one build: conflicts, gains,
// performance metrics and category scores. Conflicts are reported
// alongside the results, they do not abort the evaluation.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	spec *model.VehicleSpec,
	modIDs []string,
) (*EvaluationResult, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}
	mods, err := e.ResolveBuild(ctx, modIDs)
	if err != nil {
		return nil, err
	}
	conflicts := e.conflicts.Detect(spec, mods)
	gainRes := e.gains.Calculate(ctx, spec, mods)
	metricsRes := e.metrics.Calculate(spec, gainRes, mods)
	scoreRes := e.scores.Calculate(spec, gainRes, metricsRes, mods)
	e.l.Debug("build evaluated",
		log.String("vehicle", spec.ID),
		log.String("buildHash", gainRes.BuildHash),
		log.Int("conflicts", len(conflicts)),
		log.Float64("finalHP", gainRes.FinalHP))
	return &EvaluationResult{
		Conflicts: conflicts,
		Gain:      gainRes,
		Metrics:   metricsRes,
		Scores:    scoreRes,
		Stock:     e.scores.StockScores(spec, metricsRes),
	}, nil
}

// EstimateLapTime projects a lap time for the build on the given track.
// The Unavailable result is a documented outcome, not an error.
func (e *Evaluator) EstimateLapTime(
	ctx context.Context,
	trackID string,
	spec *model.VehicleSpec,
	modIDs []string,
	skill model.DriverSkill,
) (*model.LapTimeEstimate, *laptime.Unavailable, error) {
	if err := validateSpec(spec); err != nil {
		return nil, nil, err
	}
	mods, err := e.ResolveBuild(ctx, modIDs)
	if err != nil {
		return nil, nil, err
	}
	gainRes := e.gains.Calculate(ctx, spec, mods)
	return e.laps.Estimate(ctx, trackID, spec, gainRes, mods, skill)
}

// SubmitDyno stores a verified wheel measurement for the exact
// (vehicle, build) pair and emits a sample for the external promotion
// pipeline. Emission is fire and forget: a sink failure is logged,
// never surfaced to the caller.
func (e *Evaluator) SubmitDyno(
	ctx context.Context,
	spec *model.VehicleSpec,
	modIDs []string,
	meas *model.DynoMeasurement,
) (string, error) {
	if e.dynoStore == nil {
		return "", ErrNoDynoStore
	}
	mods, err := e.ResolveBuild(ctx, modIDs)
	if err != nil {
		return "", err
	}
	buildHash := utils.BuildHash(lo.Map(mods,
		func(m *model.Modification, _ int) string { return m.ID }))
	if meas.RecordedAt.IsZero() {
		meas.RecordedAt = time.Now()
	}
	if err := e.dynoStore(ctx, spec.ID, buildHash, meas); err != nil {
		return "", fmt.Errorf("storing dyno measurement: %w", err)
	}
	e.emitSample(&model.VerifiedSample{
		VehicleID:  spec.ID,
		PlatformID: spec.PlatformID,
		BuildHash:  buildHash,
		ModIDs: lo.Map(mods,
			func(m *model.Modification, _ int) string { return m.ID }),
		Measurement: *meas,
	})
	return buildHash, nil
}

// SubmitLapSample appends one lap record to the sample store backing
// the percentile aggregates.
func (e *Evaluator) SubmitLapSample(
	ctx context.Context,
	sample *model.LapTimeSample,
) error {
	if e.samples == nil {
		return ErrNoSampleStore
	}
	if sample.TrackID == "" {
		return fmt.Errorf("%w: trackId is required", ErrInvalidSample)
	}
	if sample.LapTime <= 0 {
		return fmt.Errorf("%w: lapTime must be positive", ErrInvalidSample)
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now()
	}
	return e.samples(ctx, sample)
}

// InvalidateCalibration drops a cached calibration entry, used after
// out-of-band calibration updates.
func (e *Evaluator) InvalidateCalibration(ctx context.Context, platformID, modID string) {
	if e.calibCache != nil {
		e.calibCache.Invalidate(ctx, calibKey{platformID: platformID, modID: modID})
	}
}

func (e *Evaluator) emitSample(sample *model.VerifiedSample) {
	if e.sampleSink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.emitWait)
		defer cancel()
		if err := e.sampleSink.EmitVerifiedSample(ctx, sample); err != nil {
			e.l.Warn("could not emit verified sample",
				log.String("buildHash", sample.BuildHash),
				log.ErrorField(err))
		}
	}()
}
