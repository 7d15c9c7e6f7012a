package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
	"chat-relay/repositories"
)

// unknownPeerName is shown when the other participant of a conversation can
// no longer be resolved. The summary degrades instead of failing.
const unknownPeerName = "Unknown"

type IConversationService interface {
	// GetOrCreate returns the unique conversation for the unordered pair
	// {a, b}, creating it on first request. Idempotent, including under
	// concurrent calls with the arguments in either order.
	GetOrCreate(ctx context.Context, a, b uuid.UUID) (domain.Conversation, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error)
	// ListFor returns the identity's conversations, most recent activity
	// first, each enriched with the other participant's display fields.
	ListFor(ctx context.Context, identityID uuid.UUID) ([]domain.ConversationSummary, error)
}

type ConversationService struct {
	conversations repositories.IConversationRepository
	identities    repositories.IIdentityRepository
	log           *slog.Logger
}

func NewConversationService(log *slog.Logger,
	conversations repositories.IConversationRepository,
	identities repositories.IIdentityRepository) IConversationService {
	return &ConversationService{
		conversations: conversations,
		identities:    identities,
		log:           log,
	}
}

func (s *ConversationService) GetOrCreate(_ context.Context, a, b uuid.UUID) (domain.Conversation, error) {
	if a == b {
		return domain.Conversation{}, fmt.Errorf("%w: a conversation needs two distinct participants", apperrors.ErrInvalidMessage)
	}

	conversation, err := s.conversations.GetByPair(a, b)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.Conversation{}, err
	}

	first, second := domain.CanonicalPair(a, b)
	candidate := domain.Conversation{
		ID:             uuid.New(),
		ParticipantIDs: [2]uuid.UUID{first, second},
	}

	err = s.conversations.Insert(candidate)
	switch {
	case err == nil:
		s.log.Info("conversation created", "conversation_id", candidate.ID)
		return candidate, nil
	case errors.Is(err, apperrors.ErrConflict):
		// Another connection created the conversation for this pair first.
		s.log.Debug("conversation creation raced, re-reading")
		return s.conversations.GetByPair(a, b)
	default:
		return domain.Conversation{}, err
	}
}

func (s *ConversationService) GetByID(_ context.Context, id uuid.UUID) (domain.Conversation, error) {
	return s.conversations.GetByID(id)
}

func (s *ConversationService) ListFor(_ context.Context, identityID uuid.UUID) ([]domain.ConversationSummary, error) {
	conversations, err := s.conversations.ListByMember(identityID)
	if err != nil {
		return nil, err
	}

	summaries := lo.Map(conversations, func(c domain.Conversation, _ int) domain.ConversationSummary {
		summary := domain.ConversationSummary{
			ConversationID:     c.ID,
			PeerName:           unknownPeerName,
			LastMessagePreview: c.LastMessagePreview,
			LastMessageAt:      c.LastMessageAt,
		}
		peerID, ok := c.OtherParticipant(identityID)
		if !ok {
			return summary
		}
		peer, err := s.identities.GetByID(peerID)
		if err != nil {
			s.log.Warn("peer identity unresolvable, degrading summary",
				"conversation_id", c.ID,
				"peer_id", peerID,
				"error", err)
			return summary
		}
		summary.PeerName = peer.DisplayName
		summary.PeerContactAddress = peer.ContactAddress
		summary.PeerAvatarRef = peer.AvatarRef
		return summary
	})

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})
	return summaries, nil
}
