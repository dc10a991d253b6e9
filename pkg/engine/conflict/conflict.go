// Package conflict validates a build against the catalog rules.
// Conflicts are advisory; the gain calculator works on unvalidated
// builds as well.
package conflict

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/revlimit/modengine-go/pkg/engine/aspiration"
	"github.com/revlimit/modengine-go/pkg/model"
)

type Detector struct {
	// nothing to configure yet; kept as a receiver so callers hold a
	// stable instance next to the other engine parts
}

func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns all conflicts found in the build. An empty slice
// means the build is valid. The build is never mutated.
func (d *Detector) Detect(
	spec *model.VehicleSpec,
	mods []*model.Modification,
) []model.Conflict {
	ret := []model.Conflict{}
	asp := aspiration.Classify(spec.EngineDescriptor)
	selected := lo.SliceToMap(mods,
		func(m *model.Modification) (string, *model.Modification) { return m.ID, m })

	ret = append(ret, d.checkInductionMutex(asp, mods)...)
	for _, m := range mods {
		if !m.AppliesTo(asp) {
			ret = append(ret, model.Conflict{
				Type:  model.ConflictAspiration,
				ModID: m.ID,
				Message: fmt.Sprintf("%s does not apply to %s engines",
					m.Name, asp),
			})
		}
		for _, req := range m.Requires {
			if _, ok := selected[req]; !ok {
				ret = append(ret, model.Conflict{
					Type:    model.ConflictMissingRequirement,
					ModID:   m.ID,
					OtherID: req,
					Message: fmt.Sprintf("%s requires %s in the same build",
						m.Name, req),
				})
			}
		}
	}
	return ret
}

// a naturally aspirated donor engine can take either a supercharger
// kit or a turbo kit, not both
func (d *Detector) checkInductionMutex(
	asp model.AspirationType,
	mods []*model.Modification,
) []model.Conflict {
	if asp != model.NaturallyAspirated {
		return nil
	}
	kits := lo.Filter(mods, func(m *model.Modification, _ int) bool {
		return m.Category == model.CategoryForcedInduction && m.InductionKind != ""
	})
	ret := []model.Conflict{}
	for i := 0; i < len(kits); i++ {
		for j := i + 1; j < len(kits); j++ {
			if kits[i].InductionKind != kits[j].InductionKind {
				ret = append(ret, model.Conflict{
					Type:    model.ConflictMutexInduction,
					ModID:   kits[i].ID,
					OtherID: kits[j].ID,
					Message: fmt.Sprintf("%s and %s cannot be combined",
						kits[i].Name, kits[j].Name),
				})
			}
		}
	}
	return ret
}
