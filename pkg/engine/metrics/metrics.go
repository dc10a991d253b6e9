// Package metrics derives acceleration, braking and grip estimates
// from the gain calculator output. The formulas are closed-form
// empirical approximations, so the confidence of every result is
// capped at the physics model tier no matter how the gain itself was
// sourced.
package metrics

import (
	"math"

	"github.com/samber/lo"

	"github.com/revlimit/modengine-go/pkg/engine/tables"
	"github.com/revlimit/modengine-go/pkg/model"
)

type (
	Calculator struct {
		tables *tables.Tables
	}
	Option func(*Calculator)
)

func WithTables(t *tables.Tables) Option {
	return func(c *Calculator) { c.tables = t }
}

func NewCalculator(opts ...Option) *Calculator {
	ret := &Calculator{tables: tables.Current()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Calculate produces the derived metrics for the vehicle with the
// given gain result. mods is the resolved build; it supplies tire,
// brake and weight attributes.
func (c *Calculator) Calculate(
	spec *model.VehicleSpec,
	res *model.GainResult,
	mods []*model.Modification,
) *model.MetricsResult {
	weightRed := lo.SumBy(mods, func(m *model.Modification) float64 {
		return m.WeightReduction
	})
	weight := spec.CurbWeight - weightRed
	loss := c.tables.LossFraction(spec.Drivetrain)
	stockWhp := spec.StockHP * (1 - loss)
	modWhp := res.WheelHP

	ret := &model.MetricsResult{
		ZeroToSixty: c.zeroToSixty(spec, weight, stockWhp, modWhp),
		QuarterMile: c.quarterMile(spec, weight, stockWhp, modWhp),
		TrapSpeed:   c.trapSpeed(spec, weight, stockWhp, modWhp),
		Braking:     c.braking(spec, mods),
		LateralG:    c.lateralG(spec, mods),
		WeightRed:   weightRed,
		Tier:        model.MinTier(res.Tier, model.PhysicsModel),
	}
	return ret
}

// baseTime = k*(weight/whp)^0.85 + shift penalty, times a real world
// correction factor. When the stock time is known the formula only
// provides the ratio and the known time anchors the estimate.
func (c *Calculator) zeroToSixty(
	spec *model.VehicleSpec,
	weight, stockWhp, modWhp float64,
) model.MetricValue {
	m := c.tables.Metrics
	formula := func(w, whp float64) float64 {
		base := m.ZeroSixtyK * math.Pow(w/whp, m.ZeroSixtyExp)
		return (base + m.ShiftPenalty[spec.Drivetrain.Gearbox]) * m.RealWorldFactor
	}
	stockCalc := formula(spec.CurbWeight, stockWhp)
	estCalc := formula(weight, modWhp)
	stock := spec.StockZeroToSixty
	if stock == 0 {
		stock = stockCalc
	}
	est := stock * (estCalc / stockCalc)
	return metricValue(stock, est, true)
}

// classic drag strip formula ET = 5.825*(weight/whp)^(1/3); awd cars
// get a fixed launch traction bonus
func (c *Calculator) quarterMile(
	spec *model.VehicleSpec,
	weight, stockWhp, modWhp float64,
) model.MetricValue {
	m := c.tables.Metrics
	formula := func(w, whp float64) float64 {
		et := m.QuarterMileK * math.Cbrt(w/whp)
		if spec.Drivetrain.Layout == model.AWD {
			et -= m.AWDLaunchBonus
		}
		return et
	}
	stockCalc := formula(spec.CurbWeight, stockWhp)
	estCalc := formula(weight, modWhp)
	stock := spec.StockQuarterMile
	if stock == 0 {
		stock = stockCalc
	}
	est := stock * (estCalc / stockCalc)
	return metricValue(stock, est, true)
}

func (c *Calculator) trapSpeed(
	spec *model.VehicleSpec,
	weight, stockWhp, modWhp float64,
) model.MetricValue {
	m := c.tables.Metrics
	stock := m.TrapSpeedK * math.Cbrt(stockWhp/spec.CurbWeight)
	est := m.TrapSpeedK * math.Cbrt(modWhp/weight)
	return metricValue(stock, est, false)
}

// d = v^2 / (2*mu*g) for 60-0, minus a fixed reduction per brake
// upgrade tier
func (c *Calculator) braking(
	spec *model.VehicleSpec,
	mods []*model.Modification,
) model.MetricValue {
	m := c.tables.Metrics
	const v = 88.0        // ft/s at 60 mph
	const g = 32.174      // ft/s^2
	mu := m.BrakingMuDefault
	if spec.StockLateralG > 0 {
		mu = spec.StockLateralG
	}
	stock := spec.StockBraking
	if stock == 0 {
		stock = v * v / (2 * mu * g)
	}
	tiers := lo.SumBy(mods, func(mod *model.Modification) float64 {
		return float64(mod.BrakeTier)
	})
	reduction := math.Min(tiers*m.BrakeTierReduct, m.BrakeReductCap)
	return metricValue(stock, stock-reduction, true)
}

// tire compound dominates; suspension upgrades add smaller bonuses
func (c *Calculator) lateralG(
	spec *model.VehicleSpec,
	mods []*model.Modification,
) model.MetricValue {
	m := c.tables.Metrics
	stock := spec.StockLateralG
	if stock == 0 {
		stock = m.BrakingMuDefault
	}
	compound := 1.0
	for _, mod := range mods {
		if mod.TireCompound == "" {
			continue
		}
		if f, ok := m.GripCompound[mod.TireCompound]; ok && f > compound {
			compound = f
		}
	}
	susp := 0.0
	for _, mod := range mods {
		susp += mod.GripBonus
	}
	susp = math.Min(susp, m.GripSuspCap)
	return metricValue(stock, stock*compound+susp, false)
}

// lowerIsBetter controls the sign of the improvement value: a drop in
// a time or distance is reported as a positive improvement.
func metricValue(stock, est float64, lowerIsBetter bool) model.MetricValue {
	imp := est - stock
	if lowerIsBetter {
		imp = stock - est
	}
	return model.MetricValue{Stock: stock, Estimated: est, Improvement: imp}
}
