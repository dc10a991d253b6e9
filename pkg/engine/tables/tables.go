package tables

import "github.com/revlimit/modengine-go/pkg/model"

// Reference data for the estimation engine. Instances are treated as
// immutable; engines receive a *Tables at construction time and never
// modify it. Current() returns the shipped revision.

type (
	CapKey struct {
		Group      string
		Aspiration model.AspirationType
	}

	LapWeights struct {
		PowerPctPer50HP float64 // fraction per 50 hp gained
		PowerCap        float64
		TireCompound    map[model.TireCompound]float64
		SuspensionCap   float64
		BrakesCap       float64
		AeroCap         float64
		WeightPctPer100 float64 // fraction per 100 lb removed
	}

	MetricsConstants struct {
		ZeroSixtyK       float64 // k in k*(weight/whp)^0.85
		ZeroSixtyExp     float64
		ShiftPenalty     map[model.GearboxType]float64
		RealWorldFactor  float64
		QuarterMileK     float64 // classic drag formula constant
		TrapSpeedK       float64
		AWDLaunchBonus   float64 // sec off the quarter mile ET
		BrakingMuDefault float64
		BrakeTierReduct  float64 // ft per upgrade tier
		BrakeReductCap   float64
		GripCompound     map[model.TireCompound]float64 // multiplier
		GripSuspCap      float64
	}

	Tables struct {
		Version string
		// category caps, absolute hp per cap group and aspiration
		Caps map[CapKey]float64
		// contribution factor beyond the first mod in a cap group
		DiminishingFactor float64
		// contribution factor for tune-assumed supporting mods
		OverlapFactor float64
		// last-resort gain fraction per category when the catalog
		// entry defines no percentages at all
		FallbackPct map[model.Category]float64
		// torque gain = hp gain * factor
		TorqueFactor map[model.AspirationType]float64
		// drivetrain loss fractions keyed by layout/gearbox
		DrivetrainLoss map[model.Drivetrain]float64
		// skill -> fraction of the theoretical improvement realized
		SkillUtilization map[model.DriverSkill]float64
		Lap              LapWeights
		Metrics          MetricsConstants
	}
)

//nolint:funlen // plain data
func Current() *Tables {
	return &Tables{
		Version:           "2025.2",
		DiminishingFactor: 0.85,
		OverlapFactor:     0.5,
		Caps: map[CapKey]float64{
			{"exhaust-flow", model.NaturallyAspirated}: 18,
			{"exhaust-flow", model.Turbo}:              45,
			{"exhaust-flow", model.TwinTurbo}:          60,
			{"exhaust-flow", model.Supercharged}:       30,
			{"intake-flow", model.NaturallyAspirated}:  12,
			{"intake-flow", model.Turbo}:               25,
			{"intake-flow", model.TwinTurbo}:           35,
			{"intake-flow", model.Supercharged}:        20,
			{"fueling", model.NaturallyAspirated}:      15,
			{"fueling", model.Turbo}:                   40,
			{"fueling", model.TwinTurbo}:               50,
			{"fueling", model.Supercharged}:            35,
		},
		FallbackPct: map[model.Category]float64{
			model.CategoryIntake:  0.02,
			model.CategoryExhaust: 0.03,
			model.CategoryFueling: 0.02,
		},
		TorqueFactor: map[model.AspirationType]float64{
			model.NaturallyAspirated: 0.95,
			model.Turbo:              1.20,
			model.TwinTurbo:          1.25,
			model.Supercharged:       1.10,
		},
		DrivetrainLoss: map[model.Drivetrain]float64{
			{Layout: model.FWD, Gearbox: model.Manual}:    0.12,
			{Layout: model.FWD, Gearbox: model.Automatic}: 0.14,
			{Layout: model.FWD, Gearbox: model.DCT}:       0.13,
			{Layout: model.RWD, Gearbox: model.Manual}:    0.15,
			{Layout: model.RWD, Gearbox: model.Automatic}: 0.17,
			{Layout: model.RWD, Gearbox: model.DCT}:       0.16,
			{Layout: model.AWD, Gearbox: model.Manual}:    0.20,
			{Layout: model.AWD, Gearbox: model.Automatic}: 0.22,
			{Layout: model.AWD, Gearbox: model.DCT}:       0.21,
		},
		SkillUtilization: map[model.DriverSkill]float64{
			model.Beginner:     0.20,
			model.Intermediate: 0.50,
			model.Advanced:     0.80,
			model.Professional: 0.95,
		},
		Lap: LapWeights{
			PowerPctPer50HP: 0.015,
			PowerCap:        0.08,
			TireCompound: map[model.TireCompound]float64{
				model.TireStreet:    0.0,
				model.TireSport:     0.03,
				model.TireSemiSlick: 0.06,
				model.TireSlick:     0.10,
			},
			SuspensionCap:   0.04,
			BrakesCap:       0.015,
			AeroCap:         0.025,
			WeightPctPer100: 0.01,
		},
		Metrics: MetricsConstants{
			ZeroSixtyK:      0.60,
			ZeroSixtyExp:    0.85,
			ShiftPenalty: map[model.GearboxType]float64{
				model.Manual:    0.30,
				model.Automatic: 0.20,
				model.DCT:       0.10,
			},
			RealWorldFactor:  1.08,
			QuarterMileK:     5.825,
			TrapSpeedK:       234.0,
			AWDLaunchBonus:   0.20,
			BrakingMuDefault: 0.90,
			BrakeTierReduct:  5.0,
			BrakeReductCap:   15.0,
			GripCompound: map[model.TireCompound]float64{
				model.TireStreet:    1.00,
				model.TireSport:     1.05,
				model.TireSemiSlick: 1.12,
				model.TireSlick:     1.20,
			},
			GripSuspCap: 0.08,
		},
	}
}

// LossFraction returns the drivetrain loss for the given layout/gearbox.
// Unknown combinations fall back to RWD manual.
func (t *Tables) LossFraction(d model.Drivetrain) float64 {
	if v, ok := t.DrivetrainLoss[d]; ok {
		return v
	}
	return t.DrivetrainLoss[model.Drivetrain{Layout: model.RWD, Gearbox: model.Manual}]
}

// Cap returns the cap for the group/aspiration pair; ok is false when
// the group is uncapped.
func (t *Tables) Cap(group string, a model.AspirationType) (float64, bool) {
	v, ok := t.Caps[CapKey{Group: group, Aspiration: a}]
	return v, ok
}
