//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

type IConversationRepository interface {
	// Insert persists a new conversation. Returns ErrConflict when a
	// conversation for the same unordered participant pair already exists.
	Insert(conversation domain.Conversation) error
	GetByPair(a, b uuid.UUID) (domain.Conversation, error)
	GetByID(id uuid.UUID) (domain.Conversation, error)
	ListByMember(identityID uuid.UUID) ([]domain.Conversation, error)
}

type ConversationRepository struct {
	db *badger.DB
}

func NewConversationRepository(db *badger.DB) IConversationRepository {
	return &ConversationRepository{db: db}
}

// Key layout:
//
//	conv:pair:{min}:{max}      uniqueness constraint on the canonical pair, value = conversation id
//	conv:id:{id}               the conversation document
//	conv:member:{identity}:{id} per-member index scanned by ListByMember
func convPairKey(a, b uuid.UUID) []byte {
	lo, hi := domain.CanonicalPair(a, b)
	return []byte(fmt.Sprintf("conv:pair:%s:%s", lo, hi))
}

func convIDKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("conv:id:%s", id))
}

func convMemberKey(identityID, conversationID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("conv:member:%s:%s", identityID, conversationID))
}

func (r *ConversationRepository) Insert(conversation domain.Conversation) error {
	data, err := encode(fromConversation(conversation))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		pairKey := convPairKey(conversation.ParticipantIDs[0], conversation.ParticipantIDs[1])
		if _, err := txn.Get(pairKey); err == nil {
			return fmt.Errorf("%w: conversation for this pair", apperrors.ErrConflict)
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set(pairKey, []byte(conversation.ID.String())); err != nil {
			return err
		}
		if err := txn.Set(convIDKey(conversation.ID), data); err != nil {
			return err
		}
		for _, member := range conversation.ParticipantIDs {
			if err := txn.Set(convMemberKey(member, conversation.ID), nil); err != nil {
				return err
			}
		}
		return nil
	})
	// Commit-time abort: another transaction claimed the pair key first.
	if err == badger.ErrConflict {
		return fmt.Errorf("%w: conversation for this pair", apperrors.ErrConflict)
	}
	return err
}

func (r *ConversationRepository) GetByPair(a, b uuid.UUID) (domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(convPairKey(a, b))
		if err != nil {
			return err
		}
		var id uuid.UUID
		if err := item.Value(func(val []byte) error {
			id, err = uuid.Parse(string(val))
			return err
		}); err != nil {
			return err
		}
		conversation, err = getConversation(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.Conversation{}, fmt.Errorf("%w: conversation for this pair", apperrors.ErrNotFound)
	}
	return conversation, err
}

func (r *ConversationRepository) GetByID(id uuid.UUID) (domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		conversation, err = getConversation(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.Conversation{}, fmt.Errorf("%w: conversation %s", apperrors.ErrNotFound, id)
	}
	return conversation, err
}

// ListByMember scans the member index and resolves each referenced
// conversation inside the same read transaction.
func (r *ConversationRepository) ListByMember(identityID uuid.UUID) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("conv:member:%s:", identityID))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			id, err := uuid.Parse(string(key[len(prefix):]))
			if err != nil {
				return fmt.Errorf("corrupt member index key %q: %w", key, err)
			}
			conversation, err := getConversation(txn, id)
			if err != nil {
				return err
			}
			conversations = append(conversations, conversation)
		}
		return nil
	})
	return conversations, err
}

func getConversation(txn *badger.Txn, id uuid.UUID) (domain.Conversation, error) {
	item, err := txn.Get(convIDKey(id))
	if err != nil {
		return domain.Conversation{}, err
	}
	var stored storedConversation
	if err := item.Value(func(val []byte) error {
		return decode(val, &stored)
	}); err != nil {
		return domain.Conversation{}, err
	}
	return toConversation(stored), nil
}
