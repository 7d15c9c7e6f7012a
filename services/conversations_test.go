package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
	"chat-relay/repositories"
)

type conversationFixture struct {
	service       IConversationService
	directory     IDirectoryService
	conversations repositories.IConversationRepository
	messages      repositories.IMessageRepository
}

func newConversationFixture(t *testing.T) conversationFixture {
	t.Helper()
	db := openTestDB(t)
	identities := repositories.NewIdentityRepository(db)
	conversations := repositories.NewConversationRepository(db)
	log := testLogger()
	return conversationFixture{
		service:       NewConversationService(log, conversations, identities),
		directory:     NewDirectoryService(log, identities),
		conversations: conversations,
		messages:      repositories.NewMessageRepository(db),
	}
}

func Test_GetOrCreate_Idempotent_BothOrders(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t)
	ctx := context.Background()

	alice, err := f.directory.ResolveOrCreate(ctx, "+1111", "Alice", "")
	req.NoError(err)
	bob, err := f.directory.ResolveOrCreate(ctx, "+2222", "Bob", "")
	req.NoError(err)

	forward, err := f.service.GetOrCreate(ctx, alice.ID, bob.ID)
	req.NoError(err)
	backward, err := f.service.GetOrCreate(ctx, bob.ID, alice.ID)
	req.NoError(err)
	req.Equal(forward.ID, backward.ID)
}

func Test_GetOrCreate_Concurrent_SingleConversation(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t)
	ctx := context.Background()

	alice, err := f.directory.ResolveOrCreate(ctx, "+1111", "Alice", "")
	req.NoError(err)
	bob, err := f.directory.ResolveOrCreate(ctx, "+2222", "Bob", "")
	req.NoError(err)

	const callers = 16
	results := make([]uuid.UUID, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// Half the callers pass the pair in reverse order.
			a, b := alice.ID, bob.ID
			if n%2 == 1 {
				a, b = b, a
			}
			conversation, err := f.service.GetOrCreate(ctx, a, b)
			require.NoError(t, err)
			results[n] = conversation.ID
		}(i)
	}
	wg.Wait()

	for _, id := range results[1:] {
		req.Equal(results[0], id)
	}
}

func Test_GetOrCreate_RejectsSelfConversation(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t)

	id := uuid.New()
	_, err := f.service.GetOrCreate(context.Background(), id, id)
	req.ErrorIs(err, apperrors.ErrInvalidMessage)
}

func Test_ListFor_EnrichesWithOtherParticipant(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t)
	ctx := context.Background()

	alice, err := f.directory.ResolveOrCreate(ctx, "+1111", "Alice", "")
	req.NoError(err)
	bob, err := f.directory.ResolveOrCreate(ctx, "+2222", "Bob", "https://example.com/bob.png")
	req.NoError(err)
	_, err = f.service.GetOrCreate(ctx, alice.ID, bob.ID)
	req.NoError(err)

	summaries, err := f.service.ListFor(ctx, alice.ID)
	req.NoError(err)
	req.Len(summaries, 1)
	// The summary names the peer, never the caller.
	req.Equal("Bob", summaries[0].PeerName)
	req.Equal("+2222", summaries[0].PeerContactAddress)
	req.Equal("https://example.com/bob.png", summaries[0].PeerAvatarRef)

	fromBob, err := f.service.ListFor(ctx, bob.ID)
	req.NoError(err)
	req.Len(fromBob, 1)
	req.Equal("Alice", fromBob[0].PeerName)
}

func Test_ListFor_UnresolvablePeer_DegradesToUnknown(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t)
	ctx := context.Background()

	alice, err := f.directory.ResolveOrCreate(ctx, "+1111", "Alice", "")
	req.NoError(err)

	// A conversation referencing an identity that was never stored.
	ghost := uuid.New()
	first, second := domain.CanonicalPair(alice.ID, ghost)
	req.NoError(f.conversations.Insert(domain.Conversation{
		ID:             uuid.New(),
		ParticipantIDs: [2]uuid.UUID{first, second},
	}))

	summaries, err := f.service.ListFor(ctx, alice.ID)
	req.NoError(err)
	req.Len(summaries, 1)
	req.Equal("Unknown", summaries[0].PeerName)
}

func Test_ListFor_SortsByLastActivity(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t)
	ctx := context.Background()

	alice, err := f.directory.ResolveOrCreate(ctx, "+1111", "Alice", "")
	req.NoError(err)
	bob, err := f.directory.ResolveOrCreate(ctx, "+2222", "Bob", "")
	req.NoError(err)
	clara, err := f.directory.ResolveOrCreate(ctx, "+3333", "Clara", "")
	req.NoError(err)

	withBob, err := f.service.GetOrCreate(ctx, alice.ID, bob.ID)
	req.NoError(err)
	withClara, err := f.service.GetOrCreate(ctx, alice.ID, clara.ID)
	req.NoError(err)

	at := time.Now().UTC()
	_, err = f.messages.Append(domain.Message{
		ID: uuid.New(), ConversationID: withBob.ID, SenderID: alice.ID,
		Body: "old", Kind: domain.KindText, SentAt: at.Add(-time.Hour),
	})
	req.NoError(err)
	_, err = f.messages.Append(domain.Message{
		ID: uuid.New(), ConversationID: withClara.ID, SenderID: alice.ID,
		Body: "fresh", Kind: domain.KindText, SentAt: at,
	})
	req.NoError(err)

	summaries, err := f.service.ListFor(ctx, alice.ID)
	req.NoError(err)
	req.Len(summaries, 2)
	req.Equal("Clara", summaries[0].PeerName)
	req.Equal("Bob", summaries[1].PeerName)
}
