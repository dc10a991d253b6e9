package gain

import (
	"github.com/revlimit/modengine-go/pkg/engine/tables"
	"github.com/revlimit/modengine-go/pkg/model"
)

// DeriveTorqueGain converts an hp gain into a torque gain using the
// fixed aspiration specific factor. Pure and total.
func DeriveTorqueGain(
	hpGain float64,
	asp model.AspirationType,
	t *tables.Tables,
) float64 {
	factor, ok := t.TorqueFactor[asp]
	if !ok {
		factor = 1.0
	}
	return hpGain * factor
}

// ApplyDrivetrainLoss converts a crank value into the wheel measured
// (dyno equivalent) value.
func ApplyDrivetrainLoss(crank, lossFraction float64) float64 {
	return crank * (1 - lossFraction)
}
