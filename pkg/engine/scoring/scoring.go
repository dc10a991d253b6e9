// Package scoring converts metrics into the seven bounded category
// scores. Stock vehicles are clamped to 8.0 so that a measurable
// improvement from modifications stays visible as a score increase.
package scoring

import (
	"math"

	"github.com/revlimit/modengine-go/pkg/engine/aspiration"
	"github.com/revlimit/modengine-go/pkg/model"
)

const (
	stockCeiling = 8.0
	minScore     = 1.0
	maxScore     = 10.0
)

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Calculate produces the score set. Stock raw scores are clamped to
// the stock ceiling first; the modification delta is added afterwards
// and the result re-clamped to [1,10].
func (e *Engine) Calculate(
	spec *model.VehicleSpec,
	res *model.GainResult,
	metrics *model.MetricsResult,
	mods []*model.Modification,
) *model.ScoreSet {
	power := scored(e.powerRaw(metrics.ZeroToSixty.Stock, spec.StockHP),
		e.powerRaw(metrics.ZeroToSixty.Estimated, res.FinalHP))
	grip := scored(e.gripRaw(metrics.LateralG.Stock),
		e.gripRaw(metrics.LateralG.Estimated))
	braking := scored(e.brakingRaw(metrics.Braking.Stock),
		e.brakingRaw(metrics.Braking.Estimated))
	trackPace := clamp(0.5*power+0.3*grip+0.2*braking, minScore, maxScore)

	return &model.ScoreSet{
		Power:       power,
		Grip:        grip,
		Braking:     braking,
		TrackPace:   trackPace,
		Drivability: e.drivability(mods),
		Reliability: e.reliability(mods),
		Sound:       e.sound(res.Aspiration, mods),
	}
}

// dominant metric is the 0-60 time; absolute hp thresholds add small
// bonuses
func (e *Engine) powerRaw(zeroSixty, hp float64) float64 {
	raw := 10.0 - (zeroSixty-2.8)*1.4
	if hp >= 500 {
		raw += 0.5
	} else if hp >= 400 {
		raw += 0.25
	}
	return raw
}

func (e *Engine) gripRaw(lateralG float64) float64 {
	return lateralG * 7.5
}

func (e *Engine) brakingRaw(distance float64) float64 {
	return 10.0 - (distance-90.0)/6.0
}

// comfort oriented baseline that aggressive hardware pulls down
func (e *Engine) drivability(mods []*model.Modification) float64 {
	raw := 7.5
	for _, m := range mods {
		switch {
		case m.TuneStage >= model.TuneStage3:
			raw -= 0.8
		case m.TuneStage == model.TuneStage2:
			raw -= 0.4
		case m.TireCompound == model.TireSemiSlick,
			m.TireCompound == model.TireSlick:
			raw -= 0.5
		case m.Category == model.CategorySuspension:
			raw -= 0.2
		case m.Category == model.CategoryWeight:
			raw -= 0.3
		}
	}
	return clamp(raw, minScore, stockCeiling)
}

func (e *Engine) reliability(mods []*model.Modification) float64 {
	raw := 8.0
	powerMods := 0
	for _, m := range mods {
		switch m.Category {
		case model.CategoryTune:
			raw -= 0.4 * float64(m.TuneStage)
		case model.CategoryForcedInduction:
			raw -= 0.6
		case model.CategoryExhaust, model.CategoryIntake, model.CategoryFueling:
			powerMods++
		}
	}
	if powerMods > 3 {
		raw -= 0.1 * float64(powerMods-3)
	}
	return clamp(raw, minScore, stockCeiling)
}

func (e *Engine) sound(asp model.AspirationType, mods []*model.Modification) float64 {
	raw := map[model.AspirationType]float64{
		model.NaturallyAspirated: 6.5,
		model.Turbo:              6.0,
		model.TwinTurbo:          6.2,
		model.Supercharged:       7.0,
	}[asp]
	exhaustBonus := 0.0
	for _, m := range mods {
		switch m.Category {
		case model.CategoryExhaust:
			exhaustBonus += 1.0
		case model.CategoryIntake:
			exhaustBonus += 0.5
		}
	}
	raw += math.Min(exhaustBonus, 2.5)
	return clamp(raw, minScore, maxScore)
}

// scored clamps the stock raw value to the stock ceiling, then applies
// the modification delta and re-clamps to [1,10].
func scored(stockRaw, modRaw float64) float64 {
	stock := clamp(stockRaw, minScore, stockCeiling)
	return clamp(stock+(modRaw-stockRaw), minScore, maxScore)
}

func clamp(v, low, high float64) float64 {
	return math.Min(math.Max(v, low), high)
}

// StockScores returns the scores of the unmodified vehicle; every
// category is at or below the stock ceiling.
func (e *Engine) StockScores(
	spec *model.VehicleSpec,
	metrics *model.MetricsResult,
) *model.ScoreSet {
	zero := &model.GainResult{
		Aspiration: aspiration.Classify(spec.EngineDescriptor),
		FinalHP:    spec.StockHP,
	}
	stockMetrics := &model.MetricsResult{
		ZeroToSixty: flat(metrics.ZeroToSixty.Stock),
		QuarterMile: flat(metrics.QuarterMile.Stock),
		Braking:     flat(metrics.Braking.Stock),
		LateralG:    flat(metrics.LateralG.Stock),
	}
	return e.Calculate(spec, zero, stockMetrics, nil)
}

func flat(v float64) model.MetricValue {
	return model.MetricValue{Stock: v, Estimated: v}
}
