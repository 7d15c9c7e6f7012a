package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
	"chat-relay/repositories"
)

// HistoryWindow is the fixed history read bound. This is a window over the
// most recent entries, not pagination.
const HistoryWindow = 50

type IMessageService interface {
	// Append validates and records a message, returning it together with the
	// conversation as updated by the same transaction.
	Append(ctx context.Context, conversationID, senderID uuid.UUID,
		senderName, body string, kind domain.MessageKind) (domain.Message, domain.Conversation, error)
	// History returns the HistoryWindow most recent messages, oldest first.
	History(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
}

type MessageService struct {
	messages      repositories.IMessageRepository
	conversations repositories.IConversationRepository
	maxBodyLength int
	log           *slog.Logger
}

func NewMessageService(log *slog.Logger,
	messages repositories.IMessageRepository,
	conversations repositories.IConversationRepository,
	maxBodyLength int) IMessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		maxBodyLength: maxBodyLength,
		log:           log,
	}
}

func (s *MessageService) Append(_ context.Context, conversationID, senderID uuid.UUID,
	senderName, body string, kind domain.MessageKind) (domain.Message, domain.Conversation, error) {
	if strings.TrimSpace(body) == "" {
		return domain.Message{}, domain.Conversation{}, fmt.Errorf("%w: empty body", apperrors.ErrInvalidMessage)
	}
	if s.maxBodyLength > 0 && len(body) > s.maxBodyLength {
		return domain.Message{}, domain.Conversation{}, fmt.Errorf("%w: body exceeds %d bytes", apperrors.ErrInvalidMessage, s.maxBodyLength)
	}
	if kind == "" {
		kind = domain.KindText
	}
	if !kind.Valid() {
		return domain.Message{}, domain.Conversation{}, fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalidMessage, kind)
	}

	conversation, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return domain.Message{}, domain.Conversation{}, fmt.Errorf("%w: unknown conversation %s", apperrors.ErrInvalidMessage, conversationID)
	}
	if !conversation.HasParticipant(senderID) {
		return domain.Message{}, domain.Conversation{}, fmt.Errorf("%w: sender is not a participant", apperrors.ErrInvalidMessage)
	}

	message := domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Body:           body,
		Kind:           kind,
		SentAt:         time.Now().UTC(),
	}
	updated, err := s.messages.Append(message)
	if err != nil {
		return domain.Message{}, domain.Conversation{}, err
	}
	return message, updated, nil
}

func (s *MessageService) History(_ context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	// Existence check first so a bogus id reports NotFound instead of an
	// empty history.
	if _, err := s.conversations.GetByID(conversationID); err != nil {
		return nil, err
	}
	return s.messages.History(conversationID, HistoryWindow)
}
