// Package protocol defines the request/event vocabulary exchanged over a
// connection. Every frame is a small JSON envelope carrying an event name and
// an event-specific payload.
package protocol

import (
	"encoding/json"
	"time"
)

// Client to server events.
const (
	EventJoin              = "join"
	EventStartConversation = "startConversation"
	EventSendMessage       = "sendMessage"
	EventFetchHistory      = "fetchHistory"
)

// Server to client events.
const (
	EventConversationSummaries = "conversationSummaries"
	EventPresenceSnapshot      = "presenceSnapshot"
	EventNewMessage            = "newMessage"
	EventMessageHistory        = "messageHistory"
	EventError                 = "error"
)

// ClientFrame is the envelope for every client request. The payload stays raw
// until the event name selects the type to decode it into.
type ClientFrame struct {
	Event string          `json:"event" validate:"required"`
	Data  json.RawMessage `json:"data"`
}

// ServerFrame is the envelope for every server push.
type ServerFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type JoinRequest struct {
	ContactAddress string `json:"contactAddress" validate:"required"`
	DisplayName    string `json:"displayName" validate:"required"`
	AvatarRef      string `json:"avatarRef"`
}

type StartConversationRequest struct {
	// CallerIdentityID and CallerContactAddress are fallbacks used only when
	// the connection has no presence entry, in that priority order.
	CallerIdentityID     string `json:"callerIdentityId"`
	CallerContactAddress string `json:"callerContactAddress"`
	PeerContactAddress   string `json:"peerContactAddress" validate:"required"`
}

type SendMessageRequest struct {
	ConversationID string `json:"conversationId" validate:"required,uuid"`
	Body           string `json:"body" validate:"required"`
	Kind           string `json:"kind"`
	// SenderID is accepted for wire compatibility with older clients but is
	// never trusted; the sender is always the connection's presence entry.
	SenderID string `json:"senderId"`
}

type FetchHistoryRequest struct {
	ConversationID string `json:"conversationId" validate:"required,uuid"`
}

type ConversationSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ContactAddress string    `json:"contactAddress"`
	AvatarRef      string    `json:"avatarRef"`
	LastMessage    string    `json:"lastMessage"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
}

// PresencePeer is one live connection in the online set. An identity
// connected from several devices appears once per connection.
type PresencePeer struct {
	IdentityID     string `json:"identityId"`
	ContactAddress string `json:"contactAddress"`
	DisplayName    string `json:"displayName"`
}

type MessagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	Body           string    `json:"body"`
	Kind           string    `json:"kind"`
	SentAt         time.Time `json:"sentAt"`
}

type MessageHistory struct {
	ConversationID string           `json:"conversationId"`
	Messages       []MessagePayload `json:"messages"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
