package calibration

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/revlimit/modengine-go/pkg/repository"
)

// LoadByPlatformMod returns the absolute hp gain calibrated for the
// (platform, modification) pair, or nil when no calibration exists.
//
//nolint:whitespace //can't make both the linter and editor happy :(
func LoadByPlatformMod(
	ctx context.Context,
	conn repository.Querier,
	platformID, modID string,
) (*float64, error) {
	row := conn.QueryRow(ctx, `
	select hp_gain from platform_calibration
	where platform_id=$1 and mod_id=$2
	`, platformID, modID)
	var gain float64
	if err := row.Scan(&gain); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &gain, nil
}

// Upsert writes a calibration entry. Used by the external promotion
// job and by tests; the engine itself only reads.
//
//nolint:whitespace //can't make both the linter and editor happy :(
func Upsert(
	ctx context.Context,
	conn repository.Querier,
	platformID, modID string,
	hpGain float64,
	sampleCount int,
) error {
	_, err := conn.Exec(ctx, `
	insert into platform_calibration (platform_id, mod_id, hp_gain, sample_count)
	values ($1,$2,$3,$4)
	on conflict (platform_id, mod_id)
	do update set hp_gain=$3, sample_count=$4, updated_at=now()
	`, platformID, modID, hpGain, sampleCount)
	return err
}
