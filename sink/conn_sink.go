// Package sink contains EventSink implementations for live connections.
package sink

import (
	"context"
	"log/slog"

	"chat-relay/protocol"
)

// ConnSink buffers server frames for one connection. The transport's write
// pump drains Frames and pushes each one onto the wire.
type ConnSink struct {
	Frames chan protocol.ServerFrame
	log    *slog.Logger
}

func NewConnSink(log *slog.Logger, bufferSize int) *ConnSink {
	return &ConnSink{
		Frames: make(chan protocol.ServerFrame, bufferSize),
		log:    log,
	}
}

// Consume is called by the dispatcher. It redirects the frame through the
// connection's channel; the transport handler takes it from there.
// A full buffer drops the frame rather than stalling the fan-out.
func (s *ConnSink) Consume(ctx context.Context, frame protocol.ServerFrame) error {
	select {
	case s.Frames <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Debug("connection buffer full, dropping frame", "event", frame.Event)
		return nil
	}
}
