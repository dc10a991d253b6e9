package catalog

import (
	"context"
	"encoding/json"

	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/repository"
)

const selectCols = `
	id, name, category, applicable, gain_pct, cap_group, requires,
	recommended, tune_stage, assumed_support, induction_kind,
	tire_compound, track_pct, grip_bonus, brake_tier, weight_reduction`

func Create(ctx context.Context, conn repository.Querier, m *model.Modification) error {
	applicable, err := json.Marshal(m.Applicable)
	if err != nil {
		return err
	}
	gainPct, err := json.Marshal(m.GainPct)
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, `
	insert into modification (
		id, name, category, applicable, gain_pct, cap_group, requires,
		recommended, tune_stage, assumed_support, induction_kind,
		tire_compound, track_pct, grip_bonus, brake_tier, weight_reduction
	) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		m.ID, m.Name, string(m.Category), applicable, gainPct, m.CapGroup,
		m.Requires, m.Recommended, int(m.TuneStage), m.AssumedSupport,
		m.InductionKind, string(m.TireCompound), m.TrackPct, m.GripBonus,
		m.BrakeTier, m.WeightReduction,
	)
	return err
}

func LoadAll(ctx context.Context, conn repository.Querier) (
	[]*model.Modification, error,
) {
	rows, err := conn.Query(ctx,
		"select "+selectCols+" from modification order by id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := []*model.Modification{}
	for rows.Next() {
		item, err := scanModification(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModification(row rowScanner) (*model.Modification, error) {
	var (
		item       model.Modification
		category   string
		applicable []byte
		gainPct    []byte
		tuneStage  int
		compound   string
	)
	if err := row.Scan(
		&item.ID, &item.Name, &category, &applicable, &gainPct,
		&item.CapGroup, &item.Requires, &item.Recommended, &tuneStage,
		&item.AssumedSupport, &item.InductionKind, &compound,
		&item.TrackPct, &item.GripBonus, &item.BrakeTier,
		&item.WeightReduction,
	); err != nil {
		return nil, err
	}
	item.Category = model.Category(category)
	item.TuneStage = model.TuneStage(tuneStage)
	item.TireCompound = model.TireCompound(compound)
	if err := json.Unmarshal(applicable, &item.Applicable); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(gainPct, &item.GainPct); err != nil {
		return nil, err
	}
	return &item, nil
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id string) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from modification where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
