// Package repositories is the durable-storage collaborator of the relay,
// backed by BadgerDB. It is the sole arbiter of the uniqueness invariants
// (contact address, canonical participant pair): both are enforced by a
// presence check and write on the constraint key inside a single Badger
// transaction, so concurrent creation attempts cannot both commit.
package repositories

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"chat-relay/domain"
)

// Stored documents carry explicit cbor tags so the on-disk layout does not
// silently change when a domain field is renamed.

type storedIdentity struct {
	ID             uuid.UUID `cbor:"id"`
	DisplayName    string    `cbor:"display_name"`
	ContactAddress string    `cbor:"contact_address"`
	AvatarRef      string    `cbor:"avatar_ref"`
	LastSeenAt     time.Time `cbor:"last_seen_at"`
}

type storedConversation struct {
	ID                 uuid.UUID    `cbor:"id"`
	ParticipantIDs     [2]uuid.UUID `cbor:"participant_ids"`
	LastMessagePreview string       `cbor:"last_message_preview"`
	LastMessageAt      time.Time    `cbor:"last_message_at"`
}

type storedMessage struct {
	ID             uuid.UUID `cbor:"id"`
	ConversationID uuid.UUID `cbor:"conversation_id"`
	SenderID       uuid.UUID `cbor:"sender_id"`
	SenderName     string    `cbor:"sender_name"`
	Body           string    `cbor:"body"`
	Kind           string    `cbor:"kind"`
	SentAt         time.Time `cbor:"sent_at"`
	Read           bool      `cbor:"read"`
}

// encMode keeps nanosecond timestamp precision; the default CBOR time mode
// truncates to whole seconds.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
}

func encode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// updateWithRetry re-runs the transaction when Badger's optimistic
// concurrency control aborts it. The closure must be idempotent.
func updateWithRetry(db *badger.DB, fn func(txn *badger.Txn) error) error {
	for {
		err := db.Update(fn)
		if err != badger.ErrConflict {
			return err
		}
	}
}

func decode(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

func fromIdentity(i domain.Identity) storedIdentity {
	return storedIdentity(i)
}

func toIdentity(s storedIdentity) domain.Identity {
	return domain.Identity(s)
}

func fromConversation(c domain.Conversation) storedConversation {
	return storedConversation(c)
}

func toConversation(s storedConversation) domain.Conversation {
	return domain.Conversation(s)
}

func fromMessage(m domain.Message) storedMessage {
	return storedMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		Body:           m.Body,
		Kind:           string(m.Kind),
		SentAt:         m.SentAt,
		Read:           m.Read,
	}
}

func toMessage(s storedMessage) domain.Message {
	return domain.Message{
		ID:             s.ID,
		ConversationID: s.ConversationID,
		SenderID:       s.SenderID,
		SenderName:     s.SenderName,
		Body:           s.Body,
		Kind:           domain.MessageKind(s.Kind),
		SentAt:         s.SentAt,
		Read:           s.Read,
	}
}
