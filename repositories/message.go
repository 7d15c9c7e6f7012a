//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

type IMessageRepository interface {
	// Append stores the message and updates the conversation's last-message
	// preview in one transaction: either both are visible or neither is.
	// Returns the conversation as it reads after the update, and ErrNotFound
	// when the conversation does not exist.
	Append(message domain.Message) (domain.Conversation, error)
	// History returns up to limit of the most recent messages, oldest first.
	History(conversationID uuid.UUID, limit int) ([]domain.Message, error)
}

type MessageRepository struct {
	db *badger.DB
}

func NewMessageRepository(db *badger.DB) IMessageRepository {
	return &MessageRepository{db: db}
}

// msgKey formats "msg:{conversation}:{timestamp_padded}:{uuid}":
//  1. The 19-digit zero padding makes lexicographical order chronological.
//  2. The UUID suffix keeps keys distinct when two messages land on the same
//     nanosecond; their relative order is then the uuid order.
func msgKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		message.ConversationID,
		message.SentAt.UnixNano(),
		message.ID,
	))
}

func msgPrefix(conversationID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", conversationID))
}

func (r *MessageRepository) Append(message domain.Message) (domain.Conversation, error) {
	data, err := encode(fromMessage(message))
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("marshal failed: %w", err)
	}
	// Retried on commit-time aborts: concurrent appends to the same
	// conversation both rewrite its summary document.
	var updated domain.Conversation
	err = updateWithRetry(r.db, func(txn *badger.Txn) error {
		conversation, err := getConversation(txn, message.ConversationID)
		if err != nil {
			return err
		}
		if err := txn.Set(msgKey(message), data); err != nil {
			return err
		}
		conversation.LastMessagePreview = message.Body
		conversation.LastMessageAt = message.SentAt
		convData, err := encode(fromConversation(conversation))
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		if err := txn.Set(convIDKey(conversation.ID), convData); err != nil {
			return err
		}
		updated = conversation
		return nil
	})
	if err == badger.ErrKeyNotFound {
		return domain.Conversation{}, fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, message.ConversationID)
	}
	return updated, err
}

// History iterates the conversation's keys in reverse to collect the newest
// limit entries, then flips the slice so callers receive them oldest first.
func (r *MessageRepository) History(conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	var newestFirst []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := msgPrefix(conversationID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the largest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(newestFirst) == limit {
				break
			}
			var stored storedMessage
			if err := it.Item().Value(func(val []byte) error {
				return decode(val, &stored)
			}); err != nil {
				return err
			}
			newestFirst = append(newestFirst, toMessage(stored))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Reverse(newestFirst), nil
}
