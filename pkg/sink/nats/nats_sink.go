package nats

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/revlimit/modengine-go/log"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/sink"
)

// SubjectVerifiedSample carries emitted dyno samples; the calibration
// promotion job subscribes here.
const SubjectVerifiedSample = "modengine.sample.verified"

type (
	NatsSink struct {
		conn *nats.Conn
		l    *log.Logger
	}
	Option func(*NatsSink)
)

func WithLogger(l *log.Logger) Option {
	return func(n *NatsSink) {
		n.l = l
	}
}

func NewNatsSink(conn *nats.Conn, opts ...Option) *NatsSink {
	ret := &NatsSink{
		conn: conn,
		l:    log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

var _ sink.SampleSink = (*NatsSink)(nil)

func (n *NatsSink) EmitVerifiedSample(
	_ context.Context,
	sample *model.VerifiedSample,
) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(SubjectVerifiedSample, data); err != nil {
		return err
	}
	n.l.Debug("verified sample emitted",
		log.String("vehicle", sample.VehicleID),
		log.String("buildHash", sample.BuildHash))
	return nil
}

func (n *NatsSink) Close() {
	n.conn.Close()
}
