//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/protocol"
	"context"
)

// EventSink is one live connection's delivery endpoint. Implementations must
// not block past the caller's context.
type EventSink interface {
	Consume(ctx context.Context, frame protocol.ServerFrame) error
}

// IPresenceRegistry is the transient connection to identity mapping.
// All mutation goes through Put/Remove; Snapshot is a consistent
// point-in-time copy that later mutations cannot affect.
type IPresenceRegistry interface {
	Put(entry domain.PresenceEntry)
	Remove(connectionID string)
	Find(connectionID string) (domain.PresenceEntry, bool)
	Snapshot() []domain.PresenceEntry
}

// IDispatcher fans events out to live connections. Delivery is best-effort
// and fire-and-forget; connections with no attached sink are skipped.
type IDispatcher interface {
	Attach(connectionID string, sink EventSink)
	Detach(connectionID string)
	Broadcast(ctx context.Context, conversation domain.Conversation, frame protocol.ServerFrame)
	AnnouncePresence(ctx context.Context)
}
