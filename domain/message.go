// This file defines Message records and their kinds.
// Messages are append-only; once written only the Read flag may change.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	KindText           MessageKind = "text"
	KindImage          MessageKind = "image"
	KindFile           MessageKind = "file"
	KindPaymentReceipt MessageKind = "payment-receipt"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindFile, KindPaymentReceipt:
		return true
	}
	return false
}

// Message is one immutable entry in a conversation's log.
// SenderName is the sender's display name at send time; it is not updated
// when the identity later renames itself.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	SenderName     string
	Body           string
	Kind           MessageKind
	SentAt         time.Time
	Read           bool
}
