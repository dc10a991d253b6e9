package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revlimit/modengine-go/pkg/model"
)

func TestLossFractionBounds(t *testing.T) {
	tbl := Current()
	for _, layout := range []model.DrivetrainLayout{model.FWD, model.RWD, model.AWD} {
		for _, gb := range []model.GearboxType{model.Manual, model.Automatic, model.DCT} {
			loss := tbl.LossFraction(model.Drivetrain{Layout: layout, Gearbox: gb})
			assert.GreaterOrEqual(t, loss, 0.12)
			assert.LessOrEqual(t, loss, 0.22)
		}
	}
}

func TestLossFractionUnknownFallsBack(t *testing.T) {
	tbl := Current()
	loss := tbl.LossFraction(model.Drivetrain{Layout: 99, Gearbox: 99})
	rwdManual := tbl.LossFraction(
		model.Drivetrain{Layout: model.RWD, Gearbox: model.Manual})
	assert.Equal(t, rwdManual, loss)
}

func TestCapLookup(t *testing.T) {
	tbl := Current()
	limit, ok := tbl.Cap("exhaust-flow", model.TwinTurbo)
	require.True(t, ok)
	assert.Positive(t, limit)

	_, ok = tbl.Cap("nonexistent-group", model.Turbo)
	assert.False(t, ok)
}

func TestCapsGrowWithForcedInduction(t *testing.T) {
	// forced induction platforms tolerate larger bolt-on gains
	tbl := Current()
	for _, group := range []string{"exhaust-flow", "intake-flow", "fueling"} {
		na, ok := tbl.Cap(group, model.NaturallyAspirated)
		require.True(t, ok)
		tt, ok := tbl.Cap(group, model.TwinTurbo)
		require.True(t, ok)
		assert.Greater(t, tt, na, group)
	}
}

func TestSkillUtilizationOrdering(t *testing.T) {
	tbl := Current()
	u := tbl.SkillUtilization
	assert.Less(t, u[model.Beginner], u[model.Intermediate])
	assert.Less(t, u[model.Intermediate], u[model.Advanced])
	assert.Less(t, u[model.Advanced], u[model.Professional])
}
