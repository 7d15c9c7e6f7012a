package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

func newConversation(a, b uuid.UUID) domain.Conversation {
	first, second := domain.CanonicalPair(a, b)
	return domain.Conversation{
		ID:             uuid.New(),
		ParticipantIDs: [2]uuid.UUID{first, second},
	}
}

func Test_Conversation_GetByPair_OrderIndependent(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t))

	alice, bob := uuid.New(), uuid.New()
	conversation := newConversation(alice, bob)
	req.NoError(repository.Insert(conversation))

	forward, err := repository.GetByPair(alice, bob)
	req.NoError(err)
	backward, err := repository.GetByPair(bob, alice)
	req.NoError(err)
	req.Equal(conversation.ID, forward.ID)
	req.Equal(conversation.ID, backward.ID)
}

func Test_Conversation_Insert_DuplicatePair_Conflicts(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t))

	alice, bob := uuid.New(), uuid.New()
	req.NoError(repository.Insert(newConversation(alice, bob)))

	// Swapped arguments still hit the canonical pair key.
	err := repository.Insert(newConversation(bob, alice))
	req.ErrorIs(err, apperrors.ErrConflict)
}

func Test_Conversation_ListByMember(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t))

	alice, bob, clara := uuid.New(), uuid.New(), uuid.New()
	aliceBob := newConversation(alice, bob)
	aliceClara := newConversation(alice, clara)
	req.NoError(repository.Insert(aliceBob))
	req.NoError(repository.Insert(aliceClara))

	forAlice, err := repository.ListByMember(alice)
	req.NoError(err)
	req.Len(forAlice, 2)

	forBob, err := repository.ListByMember(bob)
	req.NoError(err)
	req.Len(forBob, 1)
	req.Equal(aliceBob.ID, forBob[0].ID)

	unknown, err := repository.ListByMember(uuid.New())
	req.NoError(err)
	req.Empty(unknown)
}

func Test_Conversation_GetByID_Unknown_NotFound(t *testing.T) {
	req := require.New(t)
	repository := NewConversationRepository(openTestDB(t))

	_, err := repository.GetByID(uuid.New())
	req.ErrorIs(err, apperrors.ErrNotFound)
}
