// Package session implements the state machine governing a connection's
// lifecycle and routes its protocol events through the directory,
// conversation, and message services.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/services"
)

// Manager owns the presence registry and the dispatcher on behalf of every
// session. Its mutex makes a presence mutation atomic with the announcement
// that follows it: a disconnect can never race with a broadcast that still
// carries the removed entry.
type Manager struct {
	mu            sync.Mutex
	log           *slog.Logger
	registry      contract.IPresenceRegistry
	dispatcher    contract.IDispatcher
	directory     services.IDirectoryService
	conversations services.IConversationService
	messages      services.IMessageService
	validate      *validator.Validate
}

func NewManager(log *slog.Logger,
	registry contract.IPresenceRegistry,
	dispatcher contract.IDispatcher,
	directory services.IDirectoryService,
	conversations services.IConversationService,
	messages services.IMessageService) *Manager {
	return &Manager{
		log:           log,
		registry:      registry,
		dispatcher:    dispatcher,
		directory:     directory,
		conversations: conversations,
		messages:      messages,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Open creates a session for a freshly established connection. The session
// starts in StateConnected; nothing is installed in the registry until join.
func (m *Manager) Open(connectionID string, sink contract.EventSink) *Session {
	return &Session{
		manager: m,
		id:      connectionID,
		sink:    sink,
		state:   StateConnected,
		log:     m.log.With("connection_id", connectionID),
	}
}

// install binds a connection to an identity and announces the grown online
// set, all under the presence mutex. emit runs between the installation and
// the announcement so the caller's own frames are queued first.
func (m *Manager) install(ctx context.Context, entry domain.PresenceEntry, sink contract.EventSink, emit func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry.Put(entry)
	m.dispatcher.Attach(entry.ConnectionID, sink)
	if emit != nil {
		emit()
	}
	m.dispatcher.AnnouncePresence(ctx)
}

// drop removes a connection's entry and announces the reduced online set.
// Returns the removed entry, if any, so the caller can stamp last-seen.
func (m *Manager) drop(ctx context.Context, connectionID string) (domain.PresenceEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.registry.Find(connectionID)
	m.registry.Remove(connectionID)
	m.dispatcher.Detach(connectionID)
	if ok {
		m.dispatcher.AnnouncePresence(ctx)
	}
	return entry, ok
}
