// Package local provides an in-process sample sink for development
// setups without a message broker, and for tests.
package local

import (
	"context"
	"sync"

	"github.com/revlimit/modengine-go/log"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/sink"
)

type LocalSink struct {
	mutex   sync.Mutex
	samples []*model.VerifiedSample
	l       *log.Logger
}

func NewLocalSink() *LocalSink {
	return &LocalSink{l: log.Default().Named("sink")}
}

var _ sink.SampleSink = (*LocalSink)(nil)

func (s *LocalSink) EmitVerifiedSample(
	_ context.Context,
	sample *model.VerifiedSample,
) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.samples = append(s.samples, sample)
	s.l.Debug("verified sample recorded",
		log.String("vehicle", sample.VehicleID))
	return nil
}

// Samples returns the emitted samples in emission order.
func (s *LocalSink) Samples() []*model.VerifiedSample {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ret := make([]*model.VerifiedSample, len(s.samples))
	copy(ret, s.samples)
	return ret
}

func (s *LocalSink) Close() {}
