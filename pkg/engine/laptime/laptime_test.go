//nolint:funlen // table tests
package laptime

import (
	"context"
	"errors"
	"math"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/revlimit/modengine-go/pkg/engine/gain"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/testsupport/basedata"
)

func fixedLookup(stats *model.PercentileStats) AggregateLookup {
	return func(_ context.Context, trackID string) (*model.PercentileStats, error) {
		if stats != nil && stats.TrackID == trackID {
			return stats, nil
		}
		return nil, nil
	}
}

func gainFor(t *testing.T, ids ...string) (*model.GainResult, []*model.Modification) {
	t.Helper()
	mods := basedata.Mods(ids...)
	res := gain.NewCalculator().Calculate(
		context.Background(), basedata.SampleVehicle(), mods)
	return res, mods
}

func TestSkillBaseline(t *testing.T) {
	stats := basedata.SampleStats()
	est := NewEstimator(WithAggregateLookup(fixedLookup(stats)))
	tests := []struct {
		skill model.DriverSkill
		want  float64
	}{
		{model.Professional, 95.0},
		{model.Advanced, 99.5},
		{model.Intermediate, 106.0},
		{model.Beginner, 112.0},
	}
	for _, tt := range tests {
		t.Run(tt.skill.String(), func(t *testing.T) {
			res, unavail, err := est.Estimate(context.Background(),
				stats.TrackID, basedata.SampleVehicle(), nil, nil, tt.skill)
			assert.NilError(t, err)
			assert.Assert(t, unavail == nil)
			assert.Equal(t, res.Baseline, tt.want)
			// no mods: estimate equals the baseline
			assert.Equal(t, res.Estimated, tt.want)
		})
	}
}

func TestInsufficientSamples(t *testing.T) {
	stats := basedata.SampleStats()
	stats.SampleCount = 4
	est := NewEstimator(WithAggregateLookup(fixedLookup(stats)))
	res, unavail, err := est.Estimate(context.Background(), stats.TrackID,
		basedata.SampleVehicle(), nil, nil, model.Intermediate)
	assert.NilError(t, err)
	assert.Assert(t, res == nil)
	assert.Assert(t, unavail != nil)
	assert.Assert(t, unavail.Reason != "")
}

func TestUnknownTrackIsCallerError(t *testing.T) {
	est := NewEstimator(WithAggregateLookup(fixedLookup(basedata.SampleStats())))
	res, unavail, err := est.Estimate(context.Background(), "nowhere",
		basedata.SampleVehicle(), nil, nil, model.Intermediate)
	assert.Assert(t, errors.Is(err, ErrUnknownTrack))
	assert.Assert(t, res == nil)
	assert.Assert(t, unavail == nil)
}

func TestLookupErrorIsReturned(t *testing.T) {
	est := NewEstimator(WithAggregateLookup(
		func(_ context.Context, _ string) (*model.PercentileStats, error) {
			return nil, errors.New("boom")
		}))
	_, _, err := est.Estimate(context.Background(), "any",
		basedata.SampleVehicle(), nil, nil, model.Intermediate)
	assert.ErrorContains(t, err, "boom")
}

func TestImprovementBreakdown(t *testing.T) {
	stats := basedata.SampleStats()
	est := NewEstimator(WithAggregateLookup(fixedLookup(stats)))
	res, mods := gainFor(t, "tune-stage2", "downpipe", "intake",
		"tires-semislick", "coilovers", "sway-bars", "bbk", "wing", "seat-delete")
	out, unavail, err := est.Estimate(context.Background(), stats.TrackID,
		basedata.SampleVehicle(), res, mods, model.Advanced)
	assert.NilError(t, err)
	assert.Assert(t, unavail == nil)

	// power: 1.5% per 50 hp gained
	almost(t, out.Breakdown["power"], res.TotalHPGain/50.0*0.015)
	assert.Equal(t, out.Breakdown["tires"], 0.06)
	// coilovers 2% + sway bars 1%
	almost(t, out.Breakdown["suspension"], 0.03)
	almost(t, out.Breakdown["brakes"], 0.01)
	almost(t, out.Breakdown["aero"], 0.015)
	almost(t, out.Breakdown["weight"], 0.006)

	total := 0.0
	for _, v := range out.Breakdown {
		total += v
	}
	// advanced drivers realize 80% of the theoretical improvement
	almost(t, out.Improvement, out.Baseline*total*0.80)
	almost(t, out.Estimated, out.Baseline-out.Improvement)
	assert.Equal(t, out.Utilization, 0.80)
}

func TestPowerImprovementCap(t *testing.T) {
	stats := basedata.SampleStats()
	est := NewEstimator(WithAggregateLookup(fixedLookup(stats)))
	big := &model.GainResult{TotalHPGain: 500}
	out, _, err := est.Estimate(context.Background(), stats.TrackID,
		basedata.SampleVehicle(), big, nil, model.Professional)
	assert.NilError(t, err)
	assert.Equal(t, out.Breakdown["power"], 0.08)
}

func TestSkillUtilizationOrdering(t *testing.T) {
	stats := basedata.SampleStats()
	est := NewEstimator(WithAggregateLookup(fixedLookup(stats)))
	res, mods := gainFor(t, "tune-stage2", "tires-semislick")
	improvements := map[model.DriverSkill]float64{}
	for _, skill := range []model.DriverSkill{
		model.Beginner, model.Intermediate, model.Advanced, model.Professional,
	} {
		out, _, err := est.Estimate(context.Background(), stats.TrackID,
			basedata.SampleVehicle(), res, mods, skill)
		assert.NilError(t, err)
		improvements[skill] = out.Improvement / out.Baseline
	}
	// mods help only as much as the driver can exploit them
	assert.Assert(t,
		improvements[model.Beginner] < improvements[model.Intermediate])
	assert.Assert(t,
		improvements[model.Intermediate] < improvements[model.Advanced])
	assert.Assert(t,
		improvements[model.Advanced] < improvements[model.Professional])
}

func TestComparisonDeltas(t *testing.T) {
	stats := basedata.SampleStats()
	est := NewEstimator(WithAggregateLookup(fixedLookup(stats)))
	res, mods := gainFor(t, "tune-stage2")
	out, _, err := est.Estimate(context.Background(), stats.TrackID,
		basedata.SampleVehicle(), res, mods, model.Professional)
	assert.NilError(t, err)
	almost(t, out.DeltaMedian, out.Estimated-stats.Modified.P50)
	almost(t, out.DeltaFastest, out.Estimated-stats.Modified.P5)
}

func almost(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}
