package dyno

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/repository"
)

// LoadByVehicleBuild returns the verified wheel measurement recorded
// for the exact (vehicle, build) pair, or nil when none exists.
//
//nolint:whitespace //can't make both the linter and editor happy :(
func LoadByVehicleBuild(
	ctx context.Context,
	conn repository.Querier,
	vehicleID, buildHash string,
) (*model.DynoMeasurement, error) {
	row := conn.QueryRow(ctx, `
	select whp, wtq, recorded_at from verified_dyno
	where vehicle_id=$1 and build_hash=$2
	`, vehicleID, buildHash)
	var item model.DynoMeasurement
	if err := row.Scan(
		&item.WheelHP, &item.WheelTorque, &item.RecordedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert stores a verified measurement; a newer run for the same
// build replaces the older one.
//
//nolint:whitespace //can't make both the linter and editor happy :(
func Upsert(
	ctx context.Context,
	conn repository.Querier,
	vehicleID, buildHash string,
	m *model.DynoMeasurement,
) error {
	_, err := conn.Exec(ctx, `
	insert into verified_dyno (vehicle_id, build_hash, whp, wtq)
	values ($1,$2,$3,$4)
	on conflict (vehicle_id, build_hash)
	do update set whp=$3, wtq=$4, recorded_at=now()
	`, vehicleID, buildHash, m.WheelHP, m.WheelTorque)
	return err
}
