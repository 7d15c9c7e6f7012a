// Package runtime handles event propagation to live connections. It
// orchestrates delivery without containing business logic or domain rules.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/protocol"
)

// Dispatcher fans server events out to live connections.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries. A participant with no live connection simply does
// not receive the event. A single connection receives frames in dispatch
// order; no ordering holds across different connections.
//
// Dispatcher is safe for concurrent use by multiple goroutines.
type Dispatcher struct {
	mu          sync.RWMutex
	log         *slog.Logger
	registry    contract.IPresenceRegistry
	sinks       map[string]contract.EventSink // keyed by connection id
	sinkTimeout time.Duration
}

func NewDispatcher(log *slog.Logger, registry contract.IPresenceRegistry, sinkTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:         log,
		registry:    registry,
		sinks:       make(map[string]contract.EventSink),
		sinkTimeout: sinkTimeout,
	}
}

func (d *Dispatcher) Attach(connectionID string, sink contract.EventSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks[connectionID] = sink
}

func (d *Dispatcher) Detach(connectionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sinks, connectionID)
}

// Broadcast delivers the frame to every live connection of every participant
// of the conversation. Delivery is address-based, not connection-based, so an
// identity connected from several devices receives the frame on all of them.
func (d *Dispatcher) Broadcast(ctx context.Context, conversation domain.Conversation, frame protocol.ServerFrame) {
	var targets []contract.EventSink
	entries := d.registry.Snapshot()

	d.mu.RLock()
	for _, entry := range entries {
		if !conversation.HasParticipant(entry.IdentityID) {
			continue
		}
		if sink, ok := d.sinks[entry.ConnectionID]; ok {
			targets = append(targets, sink)
		}
	}
	d.mu.RUnlock()

	for _, target := range targets {
		d.deliver(ctx, target, frame)
	}
}

// AnnouncePresence pushes the current online snapshot to every live
// connection. The snapshot is taken synchronously, so a caller that mutated
// the registry before calling is guaranteed to have its change reflected.
func (d *Dispatcher) AnnouncePresence(ctx context.Context) {
	frame := protocol.ServerFrame{
		Event: protocol.EventPresenceSnapshot,
		Data:  protocol.FromPresence(d.registry.Snapshot()),
	}

	d.mu.RLock()
	targets := make([]contract.EventSink, 0, len(d.sinks))
	for _, sink := range d.sinks {
		targets = append(targets, sink)
	}
	d.mu.RUnlock()

	for _, target := range targets {
		d.deliver(ctx, target, frame)
	}
}

// deliver pushes one frame to one sink under the delivery timeout. Delivery
// stays on the caller's goroutine: handing each frame to its own goroutine
// would let consecutive dispatches to the same connection land out of order.
// Sinks must not block past the context; ConnSink drops instead of stalling,
// so a slow connection cannot hold up the fan-out.
func (d *Dispatcher) deliver(ctx context.Context, target contract.EventSink, frame protocol.ServerFrame) {
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sinkTimeout)
	defer cancel()
	if err := target.Consume(sinkCtx, frame); err != nil {
		d.log.Warn("event delivery failed",
			"event", frame.Event,
			"error", err)
	}
}
