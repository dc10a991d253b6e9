package model

type (
	// ConfidenceTier ranks the trust in an estimate.
	// The zero value is the weakest tier so that the aggregate
	// (minimum over all contributing parts) is monotonic.
	ConfidenceTier int

	// ModGain is the per-modification slice of a GainResult.
	ModGain struct {
		ModID           string         `json:"modId"`
		Name            string         `json:"name"`
		Gain            float64        `json:"gain"`
		Capped          bool           `json:"capped,omitempty"`
		Calibrated      bool           `json:"calibrated,omitempty"`
		Superseded      bool           `json:"superseded,omitempty"`
		Excluded        bool           `json:"excluded,omitempty"`
		OverlapAdjusted bool           `json:"overlapAdjusted,omitempty"`
		Tier            ConfidenceTier `json:"tier"`
	}

	// GainResult is the immutable output of a gain calculation.
	GainResult struct {
		VehicleID        string         `json:"vehicleId"`
		BuildHash        string         `json:"buildHash"`
		Aspiration       AspirationType `json:"aspiration"`
		TotalHPGain      float64        `json:"totalHpGain"`
		TotalTorqueGain  float64        `json:"totalTorqueGain"`
		FinalHP          float64        `json:"finalHp"`
		FinalTorque      float64        `json:"finalTorque"`
		WheelHP          float64        `json:"wheelHp"`
		WheelTorque      float64        `json:"wheelTorque"`
		VerifiedOverride bool           `json:"verifiedOverride,omitempty"`
		Breakdown        []ModGain      `json:"breakdown"`
		CappedGroups     []string       `json:"cappedGroups,omitempty"`
		Tier             ConfidenceTier `json:"tier"`
		TablesVersion    string         `json:"tablesVersion"`
	}

	// MetricValue pairs a stock value with its estimate.
	MetricValue struct {
		Stock       float64 `json:"stock"`
		Estimated   float64 `json:"estimated"`
		Improvement float64 `json:"improvement"`
	}

	MetricsResult struct {
		ZeroToSixty  MetricValue    `json:"zeroToSixty"`  // sec
		QuarterMile  MetricValue    `json:"quarterMile"`  // sec
		TrapSpeed    MetricValue    `json:"trapSpeed"`    // mph
		Braking      MetricValue    `json:"braking"`      // ft, 60-0
		LateralG     MetricValue    `json:"lateralG"`     // g
		WeightRed    float64        `json:"weightReduction,omitempty"`
		Tier         ConfidenceTier `json:"tier"`
	}

	// ScoreSet holds the seven bounded [1,10] category scores.
	ScoreSet struct {
		Power       float64 `json:"power"`
		Grip        float64 `json:"grip"`
		Braking     float64 `json:"braking"`
		TrackPace   float64 `json:"trackPace"`
		Drivability float64 `json:"drivability"`
		Reliability float64 `json:"reliability"`
		Sound       float64 `json:"sound"`
	}

	ConflictType int

	Conflict struct {
		Type    ConflictType `json:"type"`
		ModID   string       `json:"modId"`
		OtherID string       `json:"otherId,omitempty"`
		Message string       `json:"message"`
	}
)

const (
	GenericFallback ConfidenceTier = iota
	PhysicsModel
	Calibrated
	Verified
)

const (
	ConflictMutexInduction ConflictType = iota
	ConflictAspiration
	ConflictMissingRequirement
)

func (t ConfidenceTier) String() string {
	switch t {
	case Verified:
		return "verified"
	case Calibrated:
		return "calibrated"
	case PhysicsModel:
		return "physics_model"
	case GenericFallback:
		return "generic_fallback"
	}
	return "unknown"
}

// Confidence returns the numeric confidence range for the tier.
func (t ConfidenceTier) Confidence() (low, high float64) {
	switch t {
	case Verified:
		return 0.90, 0.99
	case Calibrated:
		return 0.70, 0.85
	case PhysicsModel:
		return 0.55, 0.70
	case GenericFallback:
		return 0.40, 0.50
	}
	return 0, 0
}

// MinTier returns the weakest tier of the given tiers.
// With no arguments it returns PhysicsModel (the trivial estimate).
func MinTier(tiers ...ConfidenceTier) ConfidenceTier {
	if len(tiers) == 0 {
		return PhysicsModel
	}
	ret := tiers[0]
	for _, t := range tiers[1:] {
		if t < ret {
			ret = t
		}
	}
	return ret
}

func (c ConflictType) String() string {
	switch c {
	case ConflictMutexInduction:
		return "mutually_exclusive_induction"
	case ConflictAspiration:
		return "aspiration_mismatch"
	case ConflictMissingRequirement:
		return "missing_requirement"
	}
	return "unknown"
}
