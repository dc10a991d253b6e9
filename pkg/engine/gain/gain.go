// Package gain implements the modification gain calculator.
package gain

import (
	"context"
	"slices"

	"github.com/samber/lo"

	"github.com/revlimit/modengine-go/log"
	"github.com/revlimit/modengine-go/pkg/engine/aspiration"
	"github.com/revlimit/modengine-go/pkg/engine/tables"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/utils"
)

type (
	// CalibrationLookup resolves the absolute hp gain measured for a
	// (platform, modification) pair. nil result means no calibration.
	CalibrationLookup func(ctx context.Context, platformID, modID string) (*float64, error)
	// DynoLookup resolves a user verified wheel measurement for the
	// exact (vehicle, build) pair. nil result means none recorded.
	DynoLookup func(ctx context.Context, vehicleID, buildHash string) (*model.DynoMeasurement, error)

	Calculator struct {
		tables *tables.Tables
		calib  CalibrationLookup
		dyno   DynoLookup
		l      *log.Logger
	}
	Option func(*Calculator)
)

func WithTables(t *tables.Tables) Option {
	return func(c *Calculator) { c.tables = t }
}

func WithCalibrationLookup(arg CalibrationLookup) Option {
	return func(c *Calculator) { c.calib = arg }
}

func WithDynoLookup(arg DynoLookup) Option {
	return func(c *Calculator) { c.dyno = arg }
}

func WithLogger(arg *log.Logger) Option {
	return func(c *Calculator) { c.l = arg }
}

func NewCalculator(opts ...Option) *Calculator {
	ret := &Calculator{
		tables: tables.Current(),
		l:      log.Default().Named("gain"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// workItem carries the intermediate state of one modification through
// the calculation stages.
type workItem struct {
	mod  *model.Modification
	out  model.ModGain
	live bool // contributes gain in the remaining stages
}

// Calculate produces the GainResult for the vehicle and the resolved
// build. It does not fail: lookup errors degrade to the physics model,
// inapplicable mods are attributed zero gain.
//
//nolint:funlen // sequential stages, splitting hurts readability
func (c *Calculator) Calculate(
	ctx context.Context,
	spec *model.VehicleSpec,
	mods []*model.Modification,
) *model.GainResult {
	asp := aspiration.Classify(spec.EngineDescriptor)
	// a build is a set of mods, repeated entries count once
	mods = lo.UniqBy(mods, func(m *model.Modification) string { return m.ID })
	buildHash := utils.BuildHash(lo.Map(mods,
		func(m *model.Modification, _ int) string { return m.ID }))

	items := c.dedupTunes(mods)
	winner := c.winningTune(items)
	c.computeBaseGains(ctx, spec, asp, items)
	c.applyOverlap(winner, items)
	c.applyDiminishing(items)
	cappedGroups := c.applyCaps(asp, items)

	totalGain := 0.0
	tiers := []model.ConfidenceTier{}
	breakdown := make([]model.ModGain, 0, len(items))
	for _, it := range items {
		if it.live {
			totalGain += it.out.Gain
			tiers = append(tiers, it.out.Tier)
		}
		breakdown = append(breakdown, it.out)
	}

	torqueGain := DeriveTorqueGain(totalGain, asp, c.tables)
	loss := c.tables.LossFraction(spec.Drivetrain)
	ret := &model.GainResult{
		VehicleID:       spec.ID,
		BuildHash:       buildHash,
		Aspiration:      asp,
		TotalHPGain:     totalGain,
		TotalTorqueGain: torqueGain,
		FinalHP:         spec.StockHP + totalGain,
		FinalTorque:     spec.StockTorque + torqueGain,
		WheelHP:         ApplyDrivetrainLoss(spec.StockHP+totalGain, loss),
		WheelTorque:     ApplyDrivetrainLoss(spec.StockTorque+torqueGain, loss),
		Breakdown:       breakdown,
		CappedGroups:    cappedGroups,
		Tier:            model.MinTier(tiers...),
		TablesVersion:   c.tables.Version,
	}
	c.applyVerifiedOverride(ctx, spec, ret)
	return ret
}

// collapse tune mods to the single highest stage; lower stages are
// marked superseded and drop out of every later stage
func (c *Calculator) dedupTunes(mods []*model.Modification) []*workItem {
	tunes := lo.Filter(mods, func(m *model.Modification, _ int) bool {
		return m.IsTune()
	})
	var keep *model.Modification
	if len(tunes) > 0 {
		keep = lo.MaxBy(tunes, func(a, b *model.Modification) bool {
			return a.TuneStage > b.TuneStage
		})
	}
	items := make([]*workItem, 0, len(mods))
	for _, m := range mods {
		it := &workItem{
			mod:  m,
			out:  model.ModGain{ModID: m.ID, Name: m.Name},
			live: true,
		}
		if m.IsTune() && m != keep {
			it.live = false
			it.out.Superseded = true
		}
		items = append(items, it)
	}
	return items
}

func (c *Calculator) winningTune(items []*workItem) *model.Modification {
	for _, it := range items {
		if it.live && it.mod.IsTune() {
			return it.mod
		}
	}
	return nil
}

// base gain per mod: calibration override first, percentage model
// second, category fallback last
func (c *Calculator) computeBaseGains(
	ctx context.Context,
	spec *model.VehicleSpec,
	asp model.AspirationType,
	items []*workItem,
) {
	for _, it := range items {
		if !it.live {
			continue
		}
		if !it.mod.AppliesTo(asp) {
			it.live = false
			it.out.Excluded = true
			continue
		}
		if c.calib != nil {
			absGain, err := c.calib(ctx, spec.PlatformID, it.mod.ID)
			if err != nil {
				// degrade to the physics model
				c.l.Warn("calibration lookup failed",
					log.String("mod", it.mod.ID), log.ErrorField(err))
			} else if absGain != nil {
				it.out.Gain = *absGain
				it.out.Calibrated = true
				it.out.Tier = model.Calibrated
				continue
			}
		}
		if pct, ok := it.mod.GainPct[asp]; ok {
			it.out.Gain = spec.StockHP * pct
			it.out.Tier = model.PhysicsModel
			continue
		}
		if len(it.mod.GainPct) == 0 {
			if pct, ok := c.tables.FallbackPct[it.mod.Category]; ok {
				it.out.Gain = spec.StockHP * pct
				it.out.Tier = model.GenericFallback
				continue
			}
		}
		// applicable but no percentage for this aspiration type:
		// zero gain, still listed for conflict purposes
		it.live = false
		it.out.Excluded = true
	}
}

// the tune's stated gain already assumes its supporting mods, so their
// standalone contribution is halved
func (c *Calculator) applyOverlap(tune *model.Modification, items []*workItem) {
	if tune == nil {
		return
	}
	assumed := lo.SliceToMap(tune.AssumedSupport,
		func(id string) (string, struct{}) { return id, struct{}{} })
	for _, it := range items {
		if !it.live || it.mod == tune {
			continue
		}
		if _, ok := assumed[it.mod.ID]; ok {
			it.out.Gain *= c.tables.OverlapFactor
			it.out.OverlapAdjusted = true
		}
	}
}

// every item beyond the first in a cap group contributes at the
// diminishing factor
func (c *Calculator) applyDiminishing(items []*workItem) {
	seen := map[string]bool{}
	for _, it := range items {
		if !it.live || it.mod.CapGroup == "" {
			continue
		}
		if seen[it.mod.CapGroup] {
			it.out.Gain *= c.tables.DiminishingFactor
		}
		seen[it.mod.CapGroup] = true
	}
}

// clamp each cap group to its aspiration dependent maximum; members of
// a clamped group are scaled proportionally
func (c *Calculator) applyCaps(
	asp model.AspirationType,
	items []*workItem,
) []string {
	sums := map[string]float64{}
	for _, it := range items {
		if it.live && it.mod.CapGroup != "" {
			sums[it.mod.CapGroup] += it.out.Gain
		}
	}
	capped := []string{}
	for group, sum := range sums {
		limit, ok := c.tables.Cap(group, asp)
		if !ok || sum <= limit {
			continue
		}
		scale := limit / sum
		for _, it := range items {
			if it.live && it.mod.CapGroup == group {
				it.out.Gain *= scale
				it.out.Capped = true
			}
		}
		capped = append(capped, group)
	}
	// map iteration order is random; keep the result reproducible
	slices.Sort(capped)
	return capped
}

// a real measurement for this exact build wins over anything computed
func (c *Calculator) applyVerifiedOverride(
	ctx context.Context,
	spec *model.VehicleSpec,
	res *model.GainResult,
) {
	if c.dyno == nil {
		return
	}
	measured, err := c.dyno(ctx, spec.ID, res.BuildHash)
	if err != nil {
		c.l.Warn("dyno lookup failed", log.String("vehicle", spec.ID),
			log.ErrorField(err))
		return
	}
	if measured == nil {
		return
	}
	res.WheelHP = measured.WheelHP
	res.WheelTorque = measured.WheelTorque
	res.VerifiedOverride = true
	res.Tier = model.Verified
}
