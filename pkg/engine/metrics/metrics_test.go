package metrics

import (
	"context"
	"math"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/revlimit/modengine-go/pkg/engine/gain"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/testsupport/basedata"
)

func evaluate(t *testing.T, ids ...string) (*model.GainResult, *model.MetricsResult) {
	t.Helper()
	mods := basedata.Mods(ids...)
	res := gain.NewCalculator().Calculate(
		context.Background(), basedata.SampleVehicle(), mods)
	return res, NewCalculator().Calculate(basedata.SampleVehicle(), res, mods)
}

func TestAccelerationImprovesWithPower(t *testing.T) {
	_, m := evaluate(t, "tune-stage2", "downpipe", "intake")
	assert.Assert(t, m.ZeroToSixty.Estimated < m.ZeroToSixty.Stock,
		"0-60 should drop: %+v", m.ZeroToSixty)
	assert.Assert(t, m.ZeroToSixty.Improvement > 0)
	assert.Assert(t, m.QuarterMile.Estimated < m.QuarterMile.Stock)
	assert.Assert(t, m.TrapSpeed.Estimated > m.TrapSpeed.Stock)
	// anchored on the known stock time
	assert.Equal(t, m.ZeroToSixty.Stock, 4.1)
}

func TestNoGainNoAccelChange(t *testing.T) {
	_, m := evaluate(t)
	assert.Equal(t, m.ZeroToSixty.Stock, m.ZeroToSixty.Estimated)
	assert.Equal(t, m.QuarterMile.Improvement, 0.0)
}

func TestBrakingReduction(t *testing.T) {
	_, m := evaluate(t, "bbk")
	// tier 2 kit takes 10 ft off the stock distance
	assert.Equal(t, m.Braking.Stock, 108.0)
	assert.Equal(t, m.Braking.Estimated, 98.0)
	assert.Equal(t, m.Braking.Improvement, 10.0)
}

func TestBrakingReductionCap(t *testing.T) {
	veh := basedata.SampleVehicle()
	mods := []*model.Modification{
		{ID: "a", Category: model.CategoryBrakes, BrakeTier: 3},
		{ID: "b", Category: model.CategoryBrakes, BrakeTier: 3},
	}
	res := gain.NewCalculator().Calculate(context.Background(), veh, mods)
	m := NewCalculator().Calculate(veh, res, mods)
	assert.Equal(t, m.Braking.Improvement, 15.0)
}

func TestLateralGrip(t *testing.T) {
	_, m := evaluate(t, "tires-semislick", "coilovers", "sway-bars")
	// compound multiplier dominates, suspension adds on top
	want := 0.98*1.12 + 0.05
	assert.Assert(t, math.Abs(m.LateralG.Estimated-want) < 1e-9,
		"got %v want %v", m.LateralG.Estimated, want)
}

func TestWeightReduction(t *testing.T) {
	_, m := evaluate(t, "seat-delete")
	assert.Equal(t, m.WeightRed, 60.0)
	// lighter car is quicker even with zero hp gain
	assert.Assert(t, m.ZeroToSixty.Estimated < m.ZeroToSixty.Stock)
}

func TestTierCappedAtPhysicsModel(t *testing.T) {
	veh := basedata.SampleVehicle()
	mods := basedata.Mods("tune-stage2")
	calc := gain.NewCalculator(gain.WithDynoLookup(
		func(_ context.Context, _, _ string) (*model.DynoMeasurement, error) {
			return &model.DynoMeasurement{WheelHP: 540, WheelTorque: 560}, nil
		}))
	res := calc.Calculate(context.Background(), veh, mods)
	assert.Equal(t, res.Tier, model.Verified)
	m := NewCalculator().Calculate(veh, res, mods)
	// formulas are approximations no matter how the gain was sourced
	assert.Equal(t, m.Tier, model.PhysicsModel)
}

func TestMetricsFinite(t *testing.T) {
	res, m := evaluate(t, "tune-stage2", "downpipe", "intake", "catback",
		"tires-semislick", "coilovers", "bbk", "wing", "seat-delete")
	_ = res
	for _, mv := range []model.MetricValue{
		m.ZeroToSixty, m.QuarterMile, m.TrapSpeed, m.Braking, m.LateralG,
	} {
		for _, v := range []float64{mv.Stock, mv.Estimated} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Fatalf("non finite metric %v in %+v", v, mv)
			}
		}
	}
}
