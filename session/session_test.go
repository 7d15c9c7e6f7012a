package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/presence"
	"chat-relay/protocol"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
	"chat-relay/sink"
)

type fixture struct {
	t        *testing.T
	manager  *Manager
	registry *presence.Registry
}

type client struct {
	session *Session
	sink    *sink.ConnSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelError)
	identities := repositories.NewIdentityRepository(db)
	conversations := repositories.NewConversationRepository(db)
	messages := repositories.NewMessageRepository(db)

	registry := presence.NewRegistry()
	dispatcher := runtime.NewDispatcher(log, registry, time.Second)
	manager := NewManager(log, registry, dispatcher,
		services.NewDirectoryService(log, identities),
		services.NewConversationService(log, conversations, identities),
		services.NewMessageService(log, messages, conversations, 0))
	return &fixture{t: t, manager: manager, registry: registry}
}

func (f *fixture) connect() client {
	connSink := sink.NewConnSink(logs.GetLoggerFromLevel(slog.LevelError), 128)
	return client{
		session: f.manager.Open(uuid.NewString(), connSink),
		sink:    connSink,
	}
}

func frame(t *testing.T, event string, payload any) protocol.ClientFrame {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return protocol.ClientFrame{Event: event, Data: data}
}

// waitFrame drains the client's sink until it sees the wanted event,
// skipping unrelated pushes such as interleaved presence snapshots.
func waitFrame(t *testing.T, c client, event string) protocol.ServerFrame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-c.sink.Frames:
			if got.Event == event {
				return got
			}
		case <-deadline:
			t.Fatalf("no %q frame received in time", event)
		}
	}
}

func join(t *testing.T, f *fixture, c client, address, name string) {
	t.Helper()
	c.session.Handle(context.Background(), frame(t, protocol.EventJoin, protocol.JoinRequest{
		ContactAddress: address,
		DisplayName:    name,
	}))
	waitFrame(t, c, protocol.EventConversationSummaries)
}

func Test_Join_EmitsSummariesThenPresence(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.connect()

	alice.session.Handle(context.Background(), frame(t, protocol.EventJoin, protocol.JoinRequest{
		ContactAddress: "+1111",
		DisplayName:    "Alice",
	}))

	summaries := waitFrame(t, alice, protocol.EventConversationSummaries)
	req.Empty(summaries.Data.([]protocol.ConversationSummary))

	snapshot := waitFrame(t, alice, protocol.EventPresenceSnapshot)
	peers := snapshot.Data.([]protocol.PresencePeer)
	req.Len(peers, 1)
	req.Equal("Alice", peers[0].DisplayName)
	req.Equal("+1111", peers[0].ContactAddress)
}

func Test_RequestsBeforeJoin_Unauthenticated(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	c := f.connect()

	c.session.Handle(context.Background(), frame(t, protocol.EventSendMessage, protocol.SendMessageRequest{
		ConversationID: uuid.NewString(),
		Body:           "sneaky",
	}))

	failure := waitFrame(t, c, protocol.EventError)
	req.Equal("unauthenticated", failure.Data.(protocol.ErrorPayload).Code)
}

func Test_StartConversation_CreatesPlaceholderPeer(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.connect()
	join(t, f, alice, "+1111", "Alice")

	// The peer "+2222" does not exist yet.
	alice.session.Handle(context.Background(), frame(t, protocol.EventStartConversation,
		protocol.StartConversationRequest{PeerContactAddress: "+2222"}))

	summaries := waitFrame(t, alice, protocol.EventConversationSummaries)
	list := summaries.Data.([]protocol.ConversationSummary)
	req.Len(list, 1)
	req.Equal("User +2222", list[0].Name)
	req.Equal("+2222", list[0].ContactAddress)
}

func Test_StartConversation_Idempotent(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.connect()
	join(t, f, alice, "+1111", "Alice")

	for i := 0; i < 3; i++ {
		alice.session.Handle(context.Background(), frame(t, protocol.EventStartConversation,
			protocol.StartConversationRequest{PeerContactAddress: "+2222"}))
		summaries := waitFrame(t, alice, protocol.EventConversationSummaries)
		req.Len(summaries.Data.([]protocol.ConversationSummary), 1)
	}
}

func Test_SendMessage_SenderTakenFromPresenceNotPayload(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.connect()
	bob := f.connect()
	join(t, f, alice, "+1111", "Alice")
	join(t, f, bob, "+2222", "Bob")

	alice.session.Handle(context.Background(), frame(t, protocol.EventStartConversation,
		protocol.StartConversationRequest{PeerContactAddress: "+2222"}))
	summaries := waitFrame(t, alice, protocol.EventConversationSummaries)
	conversationID := summaries.Data.([]protocol.ConversationSummary)[0].ID

	// The payload claims a different sender; the claim must be ignored.
	alice.session.Handle(context.Background(), frame(t, protocol.EventSendMessage, protocol.SendMessageRequest{
		ConversationID: conversationID,
		Body:           "hello",
		SenderID:       uuid.NewString(),
	}))

	delivered := waitFrame(t, bob, protocol.EventNewMessage)
	message := delivered.Data.(protocol.MessagePayload)
	req.Equal("hello", message.Body)
	req.Equal("Alice", message.SenderName)

	aliceEntry, ok := f.registry.Find(alice.session.ID())
	req.True(ok)
	req.Equal(aliceEntry.IdentityID.String(), message.SenderID)
}

func Test_SendMessage_FansOutToEveryDevice(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.connect()
	bobPhone := f.connect()
	bobLaptop := f.connect()
	join(t, f, alice, "+1111", "Alice")
	join(t, f, bobPhone, "+2222", "Bob")
	join(t, f, bobLaptop, "+2222", "Bob")

	alice.session.Handle(context.Background(), frame(t, protocol.EventStartConversation,
		protocol.StartConversationRequest{PeerContactAddress: "+2222"}))
	summaries := waitFrame(t, alice, protocol.EventConversationSummaries)
	conversationID := summaries.Data.([]protocol.ConversationSummary)[0].ID

	alice.session.Handle(context.Background(), frame(t, protocol.EventSendMessage, protocol.SendMessageRequest{
		ConversationID: conversationID,
		Body:           "hello",
	}))

	// Both of Bob's connections and Alice's own receive exactly one copy.
	for _, c := range []client{alice, bobPhone, bobLaptop} {
		delivered := waitFrame(t, c, protocol.EventNewMessage)
		req.Equal("hello", delivered.Data.(protocol.MessagePayload).Body)
	}
}

func Test_SendMessage_EmptyBody_Rejected(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.connect()
	join(t, f, alice, "+1111", "Alice")

	alice.session.Handle(context.Background(), frame(t, protocol.EventSendMessage, protocol.SendMessageRequest{
		ConversationID: uuid.NewString(),
	}))

	failure := waitFrame(t, alice, protocol.EventError)
	req.Equal("invalidMessage", failure.Data.(protocol.ErrorPayload).Code)
}

func Test_FetchHistory_WindowOldestFirst(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.connect()
	bob := f.connect()
	join(t, f, alice, "+1111", "Alice")
	join(t, f, bob, "+2222", "Bob")

	alice.session.Handle(context.Background(), frame(t, protocol.EventStartConversation,
		protocol.StartConversationRequest{PeerContactAddress: "+2222"}))
	summaries := waitFrame(t, alice, protocol.EventConversationSummaries)
	conversationID := summaries.Data.([]protocol.ConversationSummary)[0].ID

	for i := 0; i < 60; i++ {
		alice.session.Handle(context.Background(), frame(t, protocol.EventSendMessage, protocol.SendMessageRequest{
			ConversationID: conversationID,
			Body:           fmt.Sprintf("message %d", i),
		}))
	}

	alice.session.Handle(context.Background(), frame(t, protocol.EventFetchHistory,
		protocol.FetchHistoryRequest{ConversationID: conversationID}))

	history := waitFrame(t, alice, protocol.EventMessageHistory)
	payload := history.Data.(protocol.MessageHistory)
	req.Equal(conversationID, payload.ConversationID)
	req.Len(payload.Messages, 50)
	for i := 1; i < len(payload.Messages); i++ {
		req.False(payload.Messages[i].SentAt.Before(payload.Messages[i-1].SentAt))
	}
	req.Equal("message 59", payload.Messages[49].Body)
}

func Test_Disconnect_RemovesOnlyOwnEntry(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.connect()
	bob := f.connect()
	join(t, f, alice, "+1111", "Alice")
	join(t, f, bob, "+2222", "Bob")

	alice.session.Close(context.Background())

	_, ok := f.registry.Find(alice.session.ID())
	req.False(ok)
	_, ok = f.registry.Find(bob.session.ID())
	req.True(ok)

	// Bob's next snapshot no longer carries Alice.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-bob.sink.Frames:
			if got.Event != protocol.EventPresenceSnapshot {
				continue
			}
			peers := got.Data.([]protocol.PresencePeer)
			if len(peers) == 1 {
				req.Equal("Bob", peers[0].DisplayName)
				return
			}
		case <-deadline:
			t.Fatal("no reduced presence snapshot received in time")
		}
	}
}

func Test_Close_Idempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.connect()
	join(t, f, alice, "+1111", "Alice")

	alice.session.Close(context.Background())
	alice.session.Close(context.Background())
}

func Test_Handle_AfterClose_Ignored(t *testing.T) {
	f := newFixture(t)
	alice := f.connect()
	join(t, f, alice, "+1111", "Alice")
	alice.session.Close(context.Background())

	alice.session.Handle(context.Background(), frame(t, protocol.EventFetchHistory,
		protocol.FetchHistoryRequest{ConversationID: uuid.NewString()}))

	select {
	case got := <-alice.sink.Frames:
		if got.Event == protocol.EventError {
			t.Fatalf("closed session still answered with %q", got.Event)
		}
	case <-time.After(100 * time.Millisecond):
	}
}
