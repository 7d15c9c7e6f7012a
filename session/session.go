package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"chat-relay/contract"
	"chat-relay/domain"
	apperrors "chat-relay/errors"
	"chat-relay/protocol"
)

type State int

const (
	// StateConnected: transport established, no identity bound yet.
	StateConnected State = iota
	// StateJoined: a presence entry is installed for this connection.
	StateJoined
	// StateClosed: terminal, the entry has been removed.
	StateClosed
)

// Session is the per-connection protocol state machine. The transport calls
// Handle for every inbound frame and Close exactly once when the connection
// ends, abruptly or not. A session is driven by a single goroutine, matching
// the per-connection ordering guarantee of the protocol.
type Session struct {
	manager *Manager
	id      string
	sink    contract.EventSink
	state   State
	log     *slog.Logger
}

func (s *Session) ID() string { return s.id }

// Handle processes one inbound frame. Protocol errors are reported back to
// this connection only and never interrupt the handling of others.
func (s *Session) Handle(ctx context.Context, frame protocol.ClientFrame) {
	var err error
	switch {
	case s.state == StateClosed:
		return
	case s.state == StateConnected && frame.Event != protocol.EventJoin:
		// Anything but join before an identity is bound is rejected.
		err = fmt.Errorf("%w: %q requires join first", apperrors.ErrUnauthenticated, frame.Event)
	default:
		switch frame.Event {
		case protocol.EventJoin:
			err = s.join(ctx, frame.Data)
		case protocol.EventStartConversation:
			err = s.startConversation(ctx, frame.Data)
		case protocol.EventSendMessage:
			err = s.sendMessage(ctx, frame.Data)
		case protocol.EventFetchHistory:
			err = s.fetchHistory(ctx, frame.Data)
		default:
			err = fmt.Errorf("%w: unknown event %q", apperrors.ErrInvalidMessage, frame.Event)
		}
	}
	if err != nil {
		s.reject(ctx, frame.Event, err)
	}
}

// Close removes exactly this connection's presence entry, announces the
// reduced online set, and stamps the identity's last-seen time. Abrupt
// transport termination and an orderly disconnect both land here.
func (s *Session) Close(ctx context.Context) {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	entry, ok := s.manager.drop(ctx, s.id)
	if !ok {
		return
	}
	if err := s.manager.directory.TouchLastSeen(ctx, entry.IdentityID); err != nil {
		s.log.Warn("failed to stamp last seen", "identity_id", entry.IdentityID, "error", err)
	}
}

// join resolves (or registers) the identity, installs the presence entry,
// emits the caller's conversation summaries, then announces the online set.
func (s *Session) join(ctx context.Context, data json.RawMessage) error {
	var req protocol.JoinRequest
	if err := s.decode(data, &req); err != nil {
		return err
	}

	identity, err := s.manager.directory.ResolveOrCreate(ctx, req.ContactAddress, req.DisplayName, req.AvatarRef)
	if err != nil {
		return err
	}
	summaries, err := s.manager.conversations.ListFor(ctx, identity.ID)
	if err != nil {
		return err
	}

	entry := domain.PresenceEntry{
		ConnectionID:   s.id,
		IdentityID:     identity.ID,
		ContactAddress: identity.ContactAddress,
		DisplayName:    identity.DisplayName,
	}
	s.manager.install(ctx, entry, s.sink, func() {
		s.emit(ctx, protocol.ServerFrame{
			Event: protocol.EventConversationSummaries,
			Data:  protocol.FromSummaries(summaries),
		})
	})
	s.state = StateJoined

	s.log.Info("connection joined",
		"identity_id", identity.ID,
		"contact_address", identity.ContactAddress)
	return nil
}

// startConversation resolves or creates the peer identity, dedups the
// conversation for the pair, and re-emits the caller's summaries.
func (s *Session) startConversation(ctx context.Context, data json.RawMessage) error {
	var req protocol.StartConversationRequest
	if err := s.decode(data, &req); err != nil {
		return err
	}

	caller, err := s.resolveCaller(ctx, req)
	if err != nil {
		return err
	}
	peer, err := s.manager.directory.ResolveOrCreate(ctx, req.PeerContactAddress, "", "")
	if err != nil {
		return err
	}
	if _, err := s.manager.conversations.GetOrCreate(ctx, caller.ID, peer.ID); err != nil {
		return err
	}

	summaries, err := s.manager.conversations.ListFor(ctx, caller.ID)
	if err != nil {
		return err
	}
	s.emit(ctx, protocol.ServerFrame{
		Event: protocol.EventConversationSummaries,
		Data:  protocol.FromSummaries(summaries),
	})
	return nil
}

// resolveCaller prefers the connection's presence entry; the payload fields
// are fallbacks, tried in order, for a connection whose entry is gone.
func (s *Session) resolveCaller(ctx context.Context, req protocol.StartConversationRequest) (domain.Identity, error) {
	if entry, ok := s.manager.registry.Find(s.id); ok {
		return s.manager.directory.GetByID(ctx, entry.IdentityID)
	}
	if req.CallerIdentityID != "" {
		if id, err := uuid.Parse(req.CallerIdentityID); err == nil {
			if identity, err := s.manager.directory.GetByID(ctx, id); err == nil {
				return identity, nil
			}
		}
	}
	if req.CallerContactAddress != "" {
		if identity, err := s.manager.directory.GetByAddress(ctx, req.CallerContactAddress); err == nil {
			return identity, nil
		}
	}
	return domain.Identity{}, fmt.Errorf("%w: unable to resolve caller identity", apperrors.ErrUnauthenticated)
}

// sendMessage appends to the conversation's log and fans the message out to
// every live connection of both participants. The sender identity comes
// strictly from the presence entry; the payload's claim is ignored.
func (s *Session) sendMessage(ctx context.Context, data json.RawMessage) error {
	entry, ok := s.manager.registry.Find(s.id)
	if !ok {
		return fmt.Errorf("%w: sendMessage requires a presence entry", apperrors.ErrUnauthenticated)
	}

	var req protocol.SendMessageRequest
	if err := s.decode(data, &req); err != nil {
		return err
	}
	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		return fmt.Errorf("%w: malformed conversation id", apperrors.ErrInvalidMessage)
	}

	message, conversation, err := s.manager.messages.Append(ctx,
		conversationID, entry.IdentityID, entry.DisplayName,
		req.Body, domain.MessageKind(req.Kind))
	if err != nil {
		return err
	}

	s.manager.dispatcher.Broadcast(ctx, conversation, protocol.ServerFrame{
		Event: protocol.EventNewMessage,
		Data:  protocol.FromMessage(message),
	})
	return nil
}

// fetchHistory returns the bounded history window to this connection only.
func (s *Session) fetchHistory(ctx context.Context, data json.RawMessage) error {
	var req protocol.FetchHistoryRequest
	if err := s.decode(data, &req); err != nil {
		return err
	}
	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		return fmt.Errorf("%w: malformed conversation id", apperrors.ErrInvalidMessage)
	}

	messages, err := s.manager.messages.History(ctx, conversationID)
	if err != nil {
		return err
	}
	payloads := make([]protocol.MessagePayload, 0, len(messages))
	for _, m := range messages {
		payloads = append(payloads, protocol.FromMessage(m))
	}
	s.emit(ctx, protocol.ServerFrame{
		Event: protocol.EventMessageHistory,
		Data: protocol.MessageHistory{
			ConversationID: req.ConversationID,
			Messages:       payloads,
		},
	})
	return nil
}

func (s *Session) decode(data json.RawMessage, req any) error {
	if err := json.Unmarshal(data, req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidMessage, err)
	}
	if err := s.manager.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidMessage, err)
	}
	return nil
}

func (s *Session) emit(ctx context.Context, frame protocol.ServerFrame) {
	if err := s.sink.Consume(ctx, frame); err != nil {
		s.log.Warn("failed to emit frame", "event", frame.Event, "error", err)
	}
}

// reject reports a protocol error to the originating connection only.
func (s *Session) reject(ctx context.Context, event string, err error) {
	s.log.Warn("request rejected", "event", event, "error", err)
	s.emit(ctx, protocol.ServerFrame{
		Event: protocol.EventError,
		Data: protocol.ErrorPayload{
			Code:    apperrors.WireCode(err),
			Message: err.Error(),
		},
	})
}
