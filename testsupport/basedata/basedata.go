// Package basedata provides shared fixtures for engine tests.
package basedata

import "github.com/revlimit/modengine-go/pkg/model"

func SampleVehicle() *model.VehicleSpec {
	return &model.VehicleSpec{
		ID:               "veh-1",
		PlatformID:       "b58-g20",
		EngineDescriptor: "3.0L Twin-Turbo I6",
		StockHP:          473,
		StockTorque:      442,
		CurbWeight:       3880,
		Drivetrain: model.Drivetrain{
			Layout:  model.RWD,
			Gearbox: model.Automatic,
		},
		StockZeroToSixty: 4.1,
		StockQuarterMile: 12.5,
		StockBraking:     108,
		StockLateralG:    0.98,
	}
}

func SampleVehicleNA() *model.VehicleSpec {
	return &model.VehicleSpec{
		ID:               "veh-2",
		PlatformID:       "ls3-c6",
		EngineDescriptor: "6.2L V8",
		StockHP:          430,
		StockTorque:      424,
		CurbWeight:       3460,
		Drivetrain: model.Drivetrain{
			Layout:  model.RWD,
			Gearbox: model.Manual,
		},
		StockZeroToSixty: 4.3,
		StockLateralG:    0.95,
	}
}

//nolint:funlen // fixture data
func SampleCatalog() []*model.Modification {
	return []*model.Modification{
		{
			ID:       "tune-piggyback",
			Name:     "Piggyback Tune",
			Category: model.CategoryTune,
			Applicable: []model.AspirationType{
				model.Turbo, model.TwinTurbo, model.Supercharged,
			},
			GainPct: map[model.AspirationType]float64{
				model.Turbo:        0.12,
				model.TwinTurbo:    0.15,
				model.Supercharged: 0.08,
			},
			TuneStage: model.TunePiggyback,
		},
		{
			ID:       "tune-stage1",
			Name:     "Stage 1 Tune",
			Category: model.CategoryTune,
			GainPct: map[model.AspirationType]float64{
				model.NaturallyAspirated: 0.05,
				model.Turbo:              0.20,
				model.TwinTurbo:          0.25,
				model.Supercharged:       0.12,
			},
			TuneStage: model.TuneStage1,
		},
		{
			ID:       "tune-stage2",
			Name:     "Stage 2 Tune",
			Category: model.CategoryTune,
			GainPct: map[model.AspirationType]float64{
				model.Turbo:     0.30,
				model.TwinTurbo: 0.35,
			},
			TuneStage:      model.TuneStage2,
			AssumedSupport: []string{"downpipe", "intake"},
			Recommended:    []string{"downpipe"},
		},
		{
			ID:       "downpipe",
			Name:     "Downpipe",
			Category: model.CategoryExhaust,
			Applicable: []model.AspirationType{
				model.Turbo, model.TwinTurbo,
			},
			GainPct: map[model.AspirationType]float64{
				model.Turbo:     0.04,
				model.TwinTurbo: 0.05,
			},
			CapGroup: "exhaust-flow",
		},
		{
			ID:       "catback",
			Name:     "Cat-Back Exhaust",
			Category: model.CategoryExhaust,
			GainPct: map[model.AspirationType]float64{
				model.NaturallyAspirated: 0.02,
				model.Turbo:              0.02,
				model.TwinTurbo:          0.02,
				model.Supercharged:       0.02,
			},
			CapGroup: "exhaust-flow",
		},
		{
			ID:       "intake",
			Name:     "Cold Air Intake",
			Category: model.CategoryIntake,
			GainPct: map[model.AspirationType]float64{
				model.NaturallyAspirated: 0.015,
				model.Turbo:              0.025,
				model.TwinTurbo:          0.03,
				model.Supercharged:       0.02,
			},
			CapGroup: "intake-flow",
		},
		{
			ID:       "e85-flex",
			Name:     "E85 Flex Fuel Kit",
			Category: model.CategoryFueling,
			Applicable: []model.AspirationType{
				model.Turbo, model.TwinTurbo,
			},
			GainPct: map[model.AspirationType]float64{
				model.Turbo:     0.07,
				model.TwinTurbo: 0.08,
			},
			CapGroup: "fueling",
			Requires: []string{"tune-stage2"},
		},
		{
			ID:            "sc-kit",
			Name:          "Supercharger Kit",
			Category:      model.CategoryForcedInduction,
			Applicable:    []model.AspirationType{model.NaturallyAspirated},
			GainPct:       map[model.AspirationType]float64{model.NaturallyAspirated: 0.35},
			InductionKind: "supercharger",
			Requires:      []string{"fuel-pump"},
		},
		{
			ID:            "turbo-kit",
			Name:          "Single Turbo Kit",
			Category:      model.CategoryForcedInduction,
			Applicable:    []model.AspirationType{model.NaturallyAspirated},
			GainPct:       map[model.AspirationType]float64{model.NaturallyAspirated: 0.45},
			InductionKind: "turbo",
			Requires:      []string{"fuel-pump"},
		},
		{
			ID:       "fuel-pump",
			Name:     "High Flow Fuel Pump",
			Category: model.CategoryFueling,
			CapGroup: "fueling",
		},
		{
			ID:           "tires-sport",
			Name:         "Sport Tires",
			Category:     model.CategoryTires,
			TireCompound: model.TireSport,
		},
		{
			ID:           "tires-semislick",
			Name:         "Semi-Slick Tires",
			Category:     model.CategoryTires,
			TireCompound: model.TireSemiSlick,
		},
		{
			ID:        "coilovers",
			Name:      "Coilover Kit",
			Category:  model.CategorySuspension,
			TrackPct:  0.02,
			GripBonus: 0.03,
		},
		{
			ID:        "sway-bars",
			Name:      "Adjustable Sway Bars",
			Category:  model.CategorySuspension,
			TrackPct:  0.01,
			GripBonus: 0.02,
		},
		{
			ID:        "bbk",
			Name:      "Big Brake Kit",
			Category:  model.CategoryBrakes,
			TrackPct:  0.01,
			BrakeTier: 2,
		},
		{
			ID:       "wing",
			Name:     "Rear Wing",
			Category: model.CategoryAero,
			TrackPct: 0.015,
		},
		{
			ID:              "seat-delete",
			Name:            "Rear Seat Delete",
			Category:        model.CategoryWeight,
			WeightReduction: 60,
		},
	}
}

// CatalogByID returns the fixture catalog keyed by modification id.
func CatalogByID() map[string]*model.Modification {
	ret := map[string]*model.Modification{}
	for _, m := range SampleCatalog() {
		ret[m.ID] = m
	}
	return ret
}

// Mods resolves ids against the fixture catalog; unknown ids are
// skipped (tests construct valid builds).
func Mods(ids ...string) []*model.Modification {
	byID := CatalogByID()
	ret := make([]*model.Modification, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ret = append(ret, m)
		}
	}
	return ret
}

func SampleStats() *model.PercentileStats {
	return &model.PercentileStats{
		TrackID:     "road-atlanta",
		SampleCount: 42,
		Stock: model.Percentiles{
			P5:  95.0,
			P25: 99.5,
			P50: 103.0,
			P65: 106.0,
			P90: 112.0,
		},
		Modified: model.Percentiles{
			P5:  90.0,
			P25: 94.0,
			P50: 98.0,
			P65: 101.0,
			P90: 108.0,
		},
	}
}
