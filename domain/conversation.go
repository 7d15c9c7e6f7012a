package domain

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Conversation is the durable two-party channel between exactly two identities.
// Never deleted once created.
type Conversation struct {
	ID                 uuid.UUID
	ParticipantIDs     [2]uuid.UUID
	LastMessagePreview string
	LastMessageAt      time.Time
}

// ConversationSummary is a conversation as presented to one of its
// participants: the peer fields describe the OTHER participant.
type ConversationSummary struct {
	ConversationID     uuid.UUID
	PeerName           string
	PeerContactAddress string
	PeerAvatarRef      string
	LastMessagePreview string
	LastMessageAt      time.Time
}

// CanonicalPair orders two identity ids so that {A, B} and {B, A} resolve to
// the same conversation key.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(b[:], a[:]) < 0 {
		return b, a
	}
	return a, b
}

func (c Conversation) HasParticipant(id uuid.UUID) bool {
	return c.ParticipantIDs[0] == id || c.ParticipantIDs[1] == id
}

// OtherParticipant returns the participant that is not the given identity.
// Reports false when the identity is not part of the conversation.
func (c Conversation) OtherParticipant(id uuid.UUID) (uuid.UUID, bool) {
	switch id {
	case c.ParticipantIDs[0]:
		return c.ParticipantIDs[1], true
	case c.ParticipantIDs[1]:
		return c.ParticipantIDs[0], true
	}
	return uuid.UUID{}, false
}
