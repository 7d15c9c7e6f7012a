package protocol

import (
	"chat-relay/domain"

	"github.com/samber/lo"
)

func FromMessage(m domain.Message) MessagePayload {
	return MessagePayload{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		SenderName:     m.SenderName,
		Body:           m.Body,
		Kind:           string(m.Kind),
		SentAt:         m.SentAt,
	}
}

func FromSummaries(summaries []domain.ConversationSummary) []ConversationSummary {
	return lo.Map(summaries, func(s domain.ConversationSummary, _ int) ConversationSummary {
		return ConversationSummary{
			ID:             s.ConversationID.String(),
			Name:           s.PeerName,
			ContactAddress: s.PeerContactAddress,
			AvatarRef:      s.PeerAvatarRef,
			LastMessage:    s.LastMessagePreview,
			LastMessageAt:  s.LastMessageAt,
		}
	})
}

func FromPresence(entries []domain.PresenceEntry) []PresencePeer {
	return lo.Map(entries, func(e domain.PresenceEntry, _ int) PresencePeer {
		return PresencePeer{
			IdentityID:     e.IdentityID.String(),
			ContactAddress: e.ContactAddress,
			DisplayName:    e.DisplayName,
		}
	})
}
