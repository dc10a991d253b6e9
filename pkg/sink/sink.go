// Package sink delivers verified dyno samples to the external
// calibration promotion pipeline. Emission is fire and forget: the
// engine hands the sample over and returns, delivery guarantees are
// the sink's concern.
package sink

import (
	"context"

	"github.com/revlimit/modengine-go/pkg/model"
)

type SampleSink interface {
	EmitVerifiedSample(ctx context.Context, sample *model.VerifiedSample) error
	Close()
}
