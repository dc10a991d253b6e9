// Package laptime estimates lap times from historical sample
// aggregates. This is deliberately a statistical lookup model, not a
// lap simulation: the estimate is anchored on observed percentiles and
// adjusted by fixed category weights.
package laptime

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/revlimit/modengine-go/log"
	"github.com/revlimit/modengine-go/pkg/engine/tables"
	"github.com/revlimit/modengine-go/pkg/model"
)

// MinSamples is the smallest population for which an estimate is
// produced; below that the estimator reports Unavailable.
const MinSamples = 5

// ErrUnknownTrack marks a caller error: a track id for which no sample
// record exists at all. Thin data on a known track is Unavailable
// instead.
var ErrUnknownTrack = errors.New("unknown track")

type (
	// AggregateLookup resolves the percentile aggregate for a track.
	// nil result means no data for the track.
	AggregateLookup func(ctx context.Context, trackID string) (*model.PercentileStats, error)

	// Unavailable is the documented fallback when no estimate can be
	// produced. It is not an error.
	Unavailable struct {
		TrackID string `json:"trackId"`
		Reason  string `json:"reason"`
	}

	Estimator struct {
		tables *tables.Tables
		lookup AggregateLookup
		l      *log.Logger
	}
	Option func(*Estimator)
)

func WithTables(t *tables.Tables) Option {
	return func(e *Estimator) { e.tables = t }
}

func WithAggregateLookup(arg AggregateLookup) Option {
	return func(e *Estimator) { e.lookup = arg }
}

func WithLogger(arg *log.Logger) Option {
	return func(e *Estimator) { e.l = arg }
}

func NewEstimator(opts ...Option) *Estimator {
	ret := &Estimator{
		tables: tables.Current(),
		l:      log.Default().Named("laptime"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Estimate produces a lap time projection, or Unavailable when the
// track has too little data. Only lookup failures are returned as
// errors; thin data is a typed fallback.
//
//nolint:whitespace // can't make both editor and linter happy
func (e *Estimator) Estimate(
	ctx context.Context,
	trackID string,
	spec *model.VehicleSpec,
	res *model.GainResult,
	mods []*model.Modification,
	skill model.DriverSkill,
) (*model.LapTimeEstimate, *Unavailable, error) {
	if e.lookup == nil {
		return nil, &Unavailable{TrackID: trackID, Reason: "no sample source configured"}, nil
	}
	stats, err := e.lookup(ctx, trackID)
	if err != nil {
		return nil, nil, err
	}
	if stats == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTrack, trackID)
	}
	if stats.SampleCount < MinSamples {
		return nil, &Unavailable{
			TrackID: trackID,
			Reason:  "not enough lap samples for this track",
		}, nil
	}

	baseline := baselineForSkill(stats.Stock, skill)
	breakdown := e.improvementBreakdown(res, mods)
	theoretical := 0.0
	for _, pct := range breakdown {
		theoretical += pct
	}
	utilization := e.tables.SkillUtilization[skill]
	improvement := baseline * theoretical * utilization

	est := &model.LapTimeEstimate{
		TrackID:      trackID,
		Skill:        skill,
		Baseline:     baseline,
		Estimated:    baseline - improvement,
		Improvement:  improvement,
		Utilization:  utilization,
		Breakdown:    breakdown,
		DeltaMedian:  (baseline - improvement) - stats.Modified.P50,
		DeltaFastest: (baseline - improvement) - stats.Modified.P5,
		SampleCount:  stats.SampleCount,
	}
	e.l.Debug("lap estimate",
		log.String("track", trackID),
		log.String("skill", skill.String()),
		log.Float64("baseline", baseline),
		log.Float64("estimated", est.Estimated))
	return est, nil, nil
}

// higher percentile means a slower raw time; the mapping places the
// driver in the observed distribution, it is not a statistical best
// estimate
func baselineForSkill(p model.Percentiles, skill model.DriverSkill) float64 {
	switch skill {
	case model.Professional:
		return p.P5
	case model.Advanced:
		return p.P25
	case model.Intermediate:
		return p.P65
	case model.Beginner:
		return p.P90
	}
	return p.P65
}

// fixed additive category weights; each category is capped on its own,
// the categories are summed, never multiplied
func (e *Estimator) improvementBreakdown(
	res *model.GainResult,
	mods []*model.Modification,
) map[string]float64 {
	w := e.tables.Lap
	ret := map[string]float64{}

	if res != nil && res.TotalHPGain > 0 {
		ret["power"] = math.Min(
			res.TotalHPGain/50.0*w.PowerPctPer50HP, w.PowerCap)
	}

	tire := 0.0
	susp := 0.0
	brakes := 0.0
	aero := 0.0
	weight := 0.0
	for _, m := range mods {
		if m.TireCompound != "" {
			if pct, ok := w.TireCompound[m.TireCompound]; ok && pct > tire {
				tire = pct
			}
		}
		switch m.Category {
		case model.CategorySuspension:
			susp += m.TrackPct
		case model.CategoryBrakes:
			brakes += m.TrackPct
		case model.CategoryAero:
			aero += m.TrackPct
		}
		weight += m.WeightReduction
	}
	if tire > 0 {
		ret["tires"] = tire
	}
	if susp > 0 {
		ret["suspension"] = math.Min(susp, w.SuspensionCap)
	}
	if brakes > 0 {
		ret["brakes"] = math.Min(brakes, w.BrakesCap)
	}
	if aero > 0 {
		ret["aero"] = math.Min(aero, w.AeroCap)
	}
	if weight > 0 {
		ret["weight"] = weight / 100.0 * w.WeightPctPer100
	}
	return ret
}
