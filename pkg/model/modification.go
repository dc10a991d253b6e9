package model

type (
	Category     string
	TuneStage    int
	TireCompound string

	// Modification is a read-only catalog entry.
	Modification struct {
		ID       string   `json:"id" yaml:"id"`
		Name     string   `json:"name" yaml:"name"`
		Category Category `json:"category" yaml:"category"`
		// aspiration types this mod applies to; empty means all
		Applicable []AspirationType `json:"applicable,omitempty" yaml:"applicable"`
		// base gain percentage of stock hp, keyed by aspiration type
		GainPct map[AspirationType]float64 `json:"gainPct,omitempty" yaml:"gainPct"`
		// mods sharing a cap group are subject to diminishing returns and caps
		CapGroup string `json:"capGroup,omitempty" yaml:"capGroup"`
		// hard dependencies (conflict when missing from the build)
		Requires    []string `json:"requires,omitempty" yaml:"requires"`
		Recommended []string `json:"recommended,omitempty" yaml:"recommended"`
		// tune only
		TuneStage TuneStage `json:"tuneStage,omitempty" yaml:"tuneStage"`
		// mods whose gain the tune's stated gain already accounts for
		AssumedSupport []string `json:"assumedSupport,omitempty" yaml:"assumedSupport"`
		// forced-induction kits: "turbo" or "supercharger"
		InductionKind string `json:"inductionKind,omitempty" yaml:"inductionKind"`
		// lap/grip/braking attributes (zero values mean not applicable)
		TireCompound    TireCompound `json:"tireCompound,omitempty" yaml:"tireCompound"`
		TrackPct        float64      `json:"trackPct,omitempty" yaml:"trackPct"` // lap time fraction
		GripBonus       float64      `json:"gripBonus,omitempty" yaml:"gripBonus"`
		BrakeTier       int          `json:"brakeTier,omitempty" yaml:"brakeTier"`
		WeightReduction float64      `json:"weightReduction,omitempty" yaml:"weightReduction"` // lb
	}

	// Build is the ordered set of selected modification ids for one vehicle.
	Build struct {
		VehicleID string   `json:"vehicleId" yaml:"vehicleId"`
		ModIDs    []string `json:"modIds" yaml:"modIds"`
	}
)

const (
	CategoryTune            Category = "tune"
	CategoryIntake          Category = "intake"
	CategoryExhaust         Category = "exhaust"
	CategoryForcedInduction Category = "forced-induction"
	CategoryFueling         Category = "fueling"
	CategorySuspension      Category = "suspension"
	CategoryBrakes          Category = "brakes"
	CategoryTires           Category = "tires"
	CategoryAero            Category = "aero"
	CategoryWeight          Category = "weight"
)

// tune stages; higher stages supersede lower ones within a build
const (
	TuneNone TuneStage = iota
	TunePiggyback
	TuneStage1
	TuneStage2
	TuneStage3
)

const (
	TireStreet    TireCompound = "street"
	TireSport     TireCompound = "sport"
	TireSemiSlick TireCompound = "semi-slick"
	TireSlick     TireCompound = "slick"
)

// AppliesTo reports whether the mod is applicable for the given
// aspiration type. An empty applicable set means the mod is universal.
func (m *Modification) AppliesTo(a AspirationType) bool {
	if len(m.Applicable) == 0 {
		return true
	}
	for _, cand := range m.Applicable {
		if cand == a {
			return true
		}
	}
	return false
}

func (m *Modification) IsTune() bool {
	return m.Category == CategoryTune && m.TuneStage != TuneNone
}
