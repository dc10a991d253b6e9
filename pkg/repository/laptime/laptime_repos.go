package laptime

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/repository"
)

// InsertSample appends one lap time record. The store is append-only;
// aggregates are computed at read time.
//
//nolint:whitespace //can't make both the linter and editor happy :(
func InsertSample(
	ctx context.Context,
	conn repository.Querier,
	sample *model.LapTimeSample,
) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, `
	insert into lap_time_sample (
		id, track_id, lap_time_sec, modified, tire_compound, conditions
	) values ($1,$2,$3,$4,$5,$6)
	`,
		id, sample.TrackID, sample.LapTime, sample.Modified,
		string(sample.TireCompound), sample.Conditions,
	)
	return err
}

// LoadAggregate computes the percentile aggregate over all samples of
// a track, split into stock and modified populations. nil is returned
// for a track without samples.
//
//nolint:whitespace //can't make both the linter and editor happy :(
func LoadAggregate(
	ctx context.Context,
	conn repository.Querier,
	trackID string,
) (*model.PercentileStats, error) {
	row := conn.QueryRow(ctx, `
	select count(*),
		coalesce(percentile_cont(0.05) within group (order by lap_time_sec)
			filter (where not modified), 0),
		coalesce(percentile_cont(0.25) within group (order by lap_time_sec)
			filter (where not modified), 0),
		coalesce(percentile_cont(0.50) within group (order by lap_time_sec)
			filter (where not modified), 0),
		coalesce(percentile_cont(0.65) within group (order by lap_time_sec)
			filter (where not modified), 0),
		coalesce(percentile_cont(0.90) within group (order by lap_time_sec)
			filter (where not modified), 0),
		coalesce(percentile_cont(0.05) within group (order by lap_time_sec)
			filter (where modified), 0),
		coalesce(percentile_cont(0.25) within group (order by lap_time_sec)
			filter (where modified), 0),
		coalesce(percentile_cont(0.50) within group (order by lap_time_sec)
			filter (where modified), 0),
		coalesce(percentile_cont(0.65) within group (order by lap_time_sec)
			filter (where modified), 0),
		coalesce(percentile_cont(0.90) within group (order by lap_time_sec)
			filter (where modified), 0)
	from lap_time_sample where track_id=$1
	`, trackID)

	var item model.PercentileStats
	if err := row.Scan(
		&item.SampleCount,
		&item.Stock.P5, &item.Stock.P25, &item.Stock.P50,
		&item.Stock.P65, &item.Stock.P90,
		&item.Modified.P5, &item.Modified.P25, &item.Modified.P50,
		&item.Modified.P65, &item.Modified.P90,
	); err != nil {
		return nil, err
	}
	if item.SampleCount == 0 {
		return nil, nil
	}
	item.TrackID = trackID
	return &item, nil
}
