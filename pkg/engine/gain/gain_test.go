//nolint:funlen // table tests
package gain

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/revlimit/modengine-go/pkg/engine/tables"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/testsupport/basedata"
)

func almostEqual(t *testing.T, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("got %v, want %v", got, want)
	}
}

func findMod(res *model.GainResult, id string) *model.ModGain {
	for i := range res.Breakdown {
		if res.Breakdown[i].ModID == id {
			return &res.Breakdown[i]
		}
	}
	return nil
}

func TestCalculateStage2Build(t *testing.T) {
	calc := NewCalculator()
	res := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("tune-stage2", "downpipe", "intake"))

	almostEqual(t, findMod(res, "tune-stage2").Gain, 165.55, 0.01)
	almostEqual(t, findMod(res, "downpipe").Gain, 11.825, 0.01)
	almostEqual(t, findMod(res, "intake").Gain, 7.095, 0.01)
	almostEqual(t, res.TotalHPGain, 184.47, 0.01)
	assert.Equal(t, res.Tier, model.PhysicsModel)
	assert.Assert(t, findMod(res, "downpipe").OverlapAdjusted)
	assert.Assert(t, findMod(res, "intake").OverlapAdjusted)
	almostEqual(t, res.FinalHP, 473+184.47, 0.01)
	// twin turbo correlates torque at 1.25
	almostEqual(t, res.TotalTorqueGain, 184.47*1.25, 0.05)
}

func TestCalculateWithCalibration(t *testing.T) {
	calibrated := 35.0
	calc := NewCalculator(WithCalibrationLookup(
		func(_ context.Context, platformID, modID string) (*float64, error) {
			if platformID == "b58-g20" && modID == "downpipe" {
				return &calibrated, nil
			}
			return nil, nil
		}))
	res := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("tune-stage2", "downpipe", "intake"))

	dp := findMod(res, "downpipe")
	almostEqual(t, dp.Gain, 17.5, 0.001) // 35 * overlap 0.5
	assert.Assert(t, dp.Calibrated)
	assert.Equal(t, dp.Tier, model.Calibrated)
	// aggregate stays at the weakest contributing tier
	assert.Equal(t, res.Tier, model.PhysicsModel)
}

func TestCalibrationLookupErrorDegrades(t *testing.T) {
	calc := NewCalculator(WithCalibrationLookup(
		func(_ context.Context, _, _ string) (*float64, error) {
			return nil, errors.New("store unavailable")
		}))
	res := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("downpipe"))
	almostEqual(t, findMod(res, "downpipe").Gain, 473*0.05, 0.001)
	assert.Equal(t, res.Tier, model.PhysicsModel)
}

func TestTuneSupersede(t *testing.T) {
	calc := NewCalculator()
	res := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("tune-stage1", "tune-stage2"))

	s1 := findMod(res, "tune-stage1")
	assert.Assert(t, s1.Superseded)
	assert.Equal(t, s1.Gain, 0.0)
	almostEqual(t, findMod(res, "tune-stage2").Gain, 165.55, 0.01)
	almostEqual(t, res.TotalHPGain, 165.55, 0.01)
}

func TestDuplicateEntriesCollapse(t *testing.T) {
	calc := NewCalculator()
	dup := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("tune-stage2", "tune-stage2", "intake", "intake"))
	single := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("tune-stage2", "intake"))
	assert.Equal(t, dup.TotalHPGain, single.TotalHPGain)
	assert.Equal(t, dup.BuildHash, single.BuildHash)
	assert.Equal(t, len(dup.Breakdown), 2)
}

func TestEmptyBuild(t *testing.T) {
	calc := NewCalculator()
	res := calc.Calculate(context.Background(), basedata.SampleVehicle(), nil)
	assert.Equal(t, res.TotalHPGain, 0.0)
	assert.Equal(t, res.FinalHP, 473.0)
	assert.Equal(t, res.Tier, model.PhysicsModel)
}

func TestInapplicableModsAreZero(t *testing.T) {
	calc := NewCalculator()
	// downpipe does not apply to a naturally aspirated engine
	res := calc.Calculate(context.Background(), basedata.SampleVehicleNA(),
		basedata.Mods("downpipe"))
	dp := findMod(res, "downpipe")
	assert.Assert(t, dp.Excluded)
	assert.Equal(t, res.TotalHPGain, 0.0)
	assert.Equal(t, res.Tier, model.PhysicsModel)
}

func TestFallbackTier(t *testing.T) {
	calc := NewCalculator()
	// fuel-pump has no percentage table at all -> category fallback
	res := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("tune-stage2", "fuel-pump"))
	fp := findMod(res, "fuel-pump")
	assert.Equal(t, fp.Tier, model.GenericFallback)
	almostEqual(t, fp.Gain, 473*0.02, 0.001)
	// one fallback sourced component drags the aggregate down
	assert.Equal(t, res.Tier, model.GenericFallback)
}

func TestCategoryCap(t *testing.T) {
	tbl := tables.Current()
	tbl.Caps[tables.CapKey{Group: "exhaust-flow", Aspiration: model.TwinTurbo}] = 25
	calc := NewCalculator(WithTables(tbl))
	res := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("downpipe", "catback"))

	sum := findMod(res, "downpipe").Gain + findMod(res, "catback").Gain
	almostEqual(t, sum, 25, 0.001)
	assert.Assert(t, findMod(res, "downpipe").Capped)
	assert.Assert(t, findMod(res, "catback").Capped)
	assert.DeepEqual(t, res.CappedGroups, []string{"exhaust-flow"})
}

func TestDiminishingReturns(t *testing.T) {
	calc := NewCalculator()
	res := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("downpipe", "catback"))
	// second mod in the cap group contributes at 85%
	almostEqual(t, findMod(res, "downpipe").Gain, 473*0.05, 0.001)
	almostEqual(t, findMod(res, "catback").Gain, 473*0.02*0.85, 0.001)
}

func TestVerifiedOverride(t *testing.T) {
	calc := NewCalculator(WithDynoLookup(
		func(_ context.Context, vehicleID, _ string) (*model.DynoMeasurement, error) {
			if vehicleID == "veh-1" {
				return &model.DynoMeasurement{WheelHP: 540, WheelTorque: 560}, nil
			}
			return nil, nil
		}))
	res := calc.Calculate(context.Background(), basedata.SampleVehicle(),
		basedata.Mods("tune-stage2"))
	assert.Assert(t, res.VerifiedOverride)
	assert.Equal(t, res.WheelHP, 540.0)
	assert.Equal(t, res.WheelTorque, 560.0)
	assert.Equal(t, res.Tier, model.Verified)
}

func TestIdempotence(t *testing.T) {
	calc := NewCalculator()
	mods := basedata.Mods("tune-stage2", "downpipe", "intake", "catback")
	a := calc.Calculate(context.Background(), basedata.SampleVehicle(), mods)
	b := calc.Calculate(context.Background(), basedata.SampleVehicle(), mods)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical input produced different results:\n%+v\n%+v", a, b)
	}
}

func TestDrivetrainLoss(t *testing.T) {
	tbl := tables.Current()
	tests := []struct {
		name string
		dt   model.Drivetrain
		loss float64
	}{
		{"fwd manual", model.Drivetrain{Layout: model.FWD, Gearbox: model.Manual}, 0.12},
		{"awd auto", model.Drivetrain{Layout: model.AWD, Gearbox: model.Automatic}, 0.22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tbl.LossFraction(tt.dt), tt.loss)
			almostEqual(t, ApplyDrivetrainLoss(100, tbl.LossFraction(tt.dt)),
				100*(1-tt.loss), 0.0001)
		})
	}
}

func TestDeriveTorqueGain(t *testing.T) {
	tbl := tables.Current()
	tests := []struct {
		asp    model.AspirationType
		factor float64
	}{
		{model.NaturallyAspirated, 0.95},
		{model.Turbo, 1.20},
		{model.TwinTurbo, 1.25},
		{model.Supercharged, 1.10},
	}
	for _, tt := range tests {
		almostEqual(t, DeriveTorqueGain(100, tt.asp, tbl), 100*tt.factor, 0.0001)
	}
}

func TestOutputsFinite(t *testing.T) {
	calc := NewCalculator()
	ids := []string{
		"tune-piggyback", "tune-stage1", "tune-stage2", "downpipe", "catback",
		"intake", "e85-flex", "fuel-pump", "tires-semislick", "coilovers",
		"bbk", "wing", "seat-delete",
	}
	for _, veh := range []*model.VehicleSpec{
		basedata.SampleVehicle(), basedata.SampleVehicleNA(),
	} {
		res := calc.Calculate(context.Background(), veh, basedata.Mods(ids...))
		for _, v := range []float64{
			res.TotalHPGain, res.TotalTorqueGain, res.FinalHP,
			res.FinalTorque, res.WheelHP, res.WheelTorque,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Fatalf("non finite or negative output %v for %s", v, veh.ID)
			}
		}
	}
}
